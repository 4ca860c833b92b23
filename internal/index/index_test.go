package index_test

import (
	"context"
	"path/filepath"
	"testing"

	"lading/internal/index"
	"lading/internal/logging"
	"lading/internal/testsupport"
)

func build(t *testing.T, root string, workers int) *index.Index {
	t.Helper()
	idx, err := index.Build(context.Background(), root, index.Options{
		Workers: workers,
		Logger:  logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	return idx
}

func TestBuildIndexesRegularFiles(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.bin"), "123456789")
	testsupport.WriteFile(t, filepath.Join(root, "nested", "b.bin"), "abc")

	idx := build(t, root, 2)
	if idx.Len() != 2 {
		t.Fatalf("expected 2 candidates, got %d", idx.Len())
	}
	if idx.Keys() != 2 {
		t.Fatalf("expected 2 keys, got %d", idx.Keys())
	}

	ids := idx.Lookup("CBF43926:9")
	if len(ids) != 1 {
		t.Fatalf("expected 1 candidate for key, got %d", len(ids))
	}
	cand := idx.Candidate(ids[0])
	if cand.RelPath != "a.bin" {
		t.Fatalf("unexpected candidate: %+v", cand)
	}
	if cand.Path != filepath.Join(root, "a.bin") {
		t.Fatalf("unexpected absolute path: %s", cand.Path)
	}
}

func TestBuildOrdersCandidatesByPath(t *testing.T) {
	root := t.TempDir()
	// Same content, multiple paths: candidate ids for a key must follow
	// lexicographic path order regardless of worker completion order.
	testsupport.WriteFile(t, filepath.Join(root, "zz", "dup.bin"), "dup")
	testsupport.WriteFile(t, filepath.Join(root, "aa", "dup.bin"), "dup")
	testsupport.WriteFile(t, filepath.Join(root, "mm", "dup.bin"), "dup")

	idx := build(t, root, 3)
	key := testsupport.CRC32Of("dup") + ":3"
	ids := idx.Lookup(key)
	if len(ids) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(ids))
	}
	want := []string{
		filepath.Join("aa", "dup.bin"),
		filepath.Join("mm", "dup.bin"),
		filepath.Join("zz", "dup.bin"),
	}
	for i, id := range ids {
		if got := idx.Candidate(id).RelPath; got != want[i] {
			t.Fatalf("candidate %d: got %q want %q", i, got, want[i])
		}
	}
}

func TestBuildDeterministicAcrossWorkerCounts(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c.bin", "a.bin", "b.bin", "d/e.bin"} {
		testsupport.WriteFile(t, filepath.Join(root, name), name)
	}

	one := build(t, root, 1)
	many := build(t, root, 4)
	if one.Len() != many.Len() {
		t.Fatalf("candidate counts differ: %d vs %d", one.Len(), many.Len())
	}
	for i := 0; i < one.Len(); i++ {
		a, b := one.Candidate(i), many.Candidate(i)
		if a.RelPath != b.RelPath || a.Checksum != b.Checksum || a.Size != b.Size {
			t.Fatalf("candidate %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestBuildEmptyRoot(t *testing.T) {
	idx := build(t, t.TempDir(), 2)
	if idx.Len() != 0 || idx.Keys() != 0 {
		t.Fatalf("expected empty index, got %d files %d keys", idx.Len(), idx.Keys())
	}
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := index.Build(context.Background(), filepath.Join(t.TempDir(), "absent"), index.Options{
		Workers: 1,
		Logger:  logging.NewNop(),
	})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestMarkMovedAndClaims(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.bin"), "x")

	idx := build(t, root, 1)
	cand := idx.Candidate(0)
	if cand.Claimed() {
		t.Fatal("fresh candidate must be unclaimed")
	}
	cand.ClaimedBy = "m1"
	cand.ClaimedRow = 3
	if !idx.Candidate(0).Claimed() {
		t.Fatal("claim must be visible through the index")
	}

	idx.MarkMoved(0)
	if !idx.Candidate(0).Moved {
		t.Fatal("MarkMoved did not stick")
	}
	if idx.Candidate(-1) != nil || idx.Candidate(99) != nil {
		t.Fatal("out-of-range ids must return nil")
	}
}
