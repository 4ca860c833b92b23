package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"lading/internal/config"
	"lading/internal/faults"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// AccessMode selects which permissions a directory check demands.
type AccessMode int

const (
	// ReadOnly requires read and traverse permission.
	ReadOnly AccessMode = iota
	// ReadWrite additionally requires write permission.
	ReadWrite
)

// CheckDirectoryAccess verifies that the directory exists and carries the
// demanded permissions.
func CheckDirectoryAccess(name, path string, mode AccessMode) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}

	bits := uint32(unix.R_OK | unix.X_OK)
	want := "read ok"
	if mode == ReadWrite {
		bits |= unix.W_OK
		want = "read/write ok"
	}
	if err := unix.Access(path, bits); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, want)}
}

// CheckFreeSpace verifies the destination filesystem can absorb the bytes
// scheduled to move.
func CheckFreeSpace(path string, required int64) Result {
	const name = "Destination free space"
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < required {
		return Result{Name: name, Detail: fmt.Sprintf(
			"%s (error: %d bytes available, %d required)", path, available, required)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf(
		"%s (%d bytes available, %d required)", path, available, required)}
}

// RunAll executes the directory checks for a run. Dry runs demand only read
// access on the pools; the report directory stays writable because reports
// are produced either way.
func RunAll(cfg *config.Config, dryRun bool) []Result {
	if cfg == nil {
		return nil
	}
	pool := ReadWrite
	if dryRun {
		pool = ReadOnly
	}
	return []Result{
		CheckDirectoryAccess("Source directory", cfg.Paths.SourceDir, pool),
		CheckDirectoryAccess("Manifest directory", cfg.Paths.ManifestDir, pool),
		CheckDirectoryAccess("Destination directory", cfg.Paths.DestDir, pool),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir, ReadWrite),
	}
}

// Gate converts failed results into the run-fatal configuration error.
func Gate(results []Result) error {
	var failed []string
	for _, res := range results {
		if !res.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", res.Name, res.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrConfiguration, "preflight", "environment checks",
		strings.Join(failed, "; "), nil)
}
