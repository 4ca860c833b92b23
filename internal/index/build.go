package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"lading/internal/checksum"
	"lading/internal/logging"
)

// Options controls index construction.
type Options struct {
	// Workers bounds concurrent file-read+checksum operations. Values below
	// one run a single worker.
	Workers int
	Logger  *slog.Logger
	// Progress, when set, is called after each file is hashed.
	Progress func(done, total int)
}

type hashResult struct {
	pos  int
	sum  string
	size int64
	err  error
}

// Build enumerates regular files under root, hashes them with a bounded
// worker pool, and returns the composite-key index. Workers only read files
// and emit results; aggregation into the arena and key map happens on the
// coordinating goroutine. Files that cannot be hashed are skipped with a
// warning.
func Build(ctx context.Context, root string, opts Options) (*Index, error) {
	logger := logging.NewComponentLogger(opts.Logger, "indexer")

	paths, err := enumerate(root)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", root, err)
	}
	sort.Strings(paths)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]hashResult, len(paths))
	resultCh := make(chan hashResult)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	go func() {
		for pos, path := range paths {
			pos, path := pos, path
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				sum, size, hashErr := checksum.File(filepath.Join(root, path))
				select {
				case resultCh <- hashResult{pos: pos, sum: sum, size: size, err: hashErr}:
					return nil
				case <-groupCtx.Done():
					return groupCtx.Err()
				}
			})
		}
		group.Wait()
		close(resultCh)
	}()

	done := 0
	for res := range resultCh {
		results[res.pos] = res
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(paths))
		}
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Arena assembly walks paths in sorted order regardless of worker
	// completion order, keeping candidate discovery order stable.
	x := &Index{root: root, byKey: make(map[string][]int)}
	for pos, path := range paths {
		res := results[pos]
		if res.err != nil {
			logging.WarnWithContext(logger, "file excluded from candidate pool", "checksum_failure",
				logging.String("path", path),
				logging.Error(res.err),
				logging.String(logging.FieldErrorHint, "verify the file is readable and rerun"),
				logging.String(logging.FieldImpact, "file cannot be matched this run"),
			)
			continue
		}
		id := len(x.arena)
		x.arena = append(x.arena, Candidate{
			ID:       id,
			Path:     filepath.Join(root, path),
			RelPath:  path,
			Size:     res.size,
			Checksum: res.sum,
		})
		key := checksum.Key(res.sum, res.size)
		x.byKey[key] = append(x.byKey[key], id)
	}

	logger.Info("candidate index built",
		logging.Int("files", x.Len()),
		logging.Int("keys", x.Keys()),
		logging.Int("skipped", len(paths)-x.Len()),
	)
	return x, nil
}

// enumerate collects regular-file paths relative to root. Directories,
// symlinks, and other irregular entries are skipped.
func enumerate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
