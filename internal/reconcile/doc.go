// Package reconcile orchestrates a full run: lock, preflight, candidate
// indexing, manifest arbitration and evaluation, the move phase, conflict
// verification, and report writing. Phases run in a fixed order and each
// manifest's failures stay isolated to that manifest.
package reconcile
