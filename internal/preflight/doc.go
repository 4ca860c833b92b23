// Package preflight validates the run environment before any file is
// touched: directory existence and permissions, and destination free space
// against the bytes scheduled to move.
package preflight
