// Package report writes the run artifacts: per-manifest missing-files CSVs,
// the consolidated conflict CSV, and the console run summary.
package report
