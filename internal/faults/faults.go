// Package faults defines the error taxonomy shared across the reconciliation
// run. Failures isolate to the smallest affected unit: a bad row drops the
// row, a bad manifest skips the manifest, and only configuration errors stop
// the run before any processing.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks a malformed manifest row. The row is dropped and the
	// manifest continues.
	ErrParse = errors.New("parse error")
	// ErrManifestIO marks a manifest that could not be read. The whole
	// manifest is skipped; other manifests are unaffected.
	ErrManifestIO = errors.New("manifest io error")
	// ErrChecksum marks a file whose checksum could not be computed. The
	// file is excluded from indexing or conflict verification.
	ErrChecksum = errors.New("checksum error")
	// ErrConfiguration marks an unusable configuration. Run-fatal, raised
	// before any manifest is processed.
	ErrConfiguration = errors.New("configuration error")
	// ErrMove marks a single failed file relocation. Other files and
	// manifests continue.
	ErrMove = errors.New("move error")
	// ErrConflict marks a failure in the conflict ledger or verification
	// pass.
	ErrConflict = errors.New("conflict error")
)

// Wrap builds an error that carries stage context while tagging it with the
// provided marker for classification. The marker should be one of the
// sentinels above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrMove
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err must abort the run. Only configuration errors
// are run-fatal; everything else is logged and isolated.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "reconciliation failure"
	}
	return strings.Join(parts, ": ")
}
