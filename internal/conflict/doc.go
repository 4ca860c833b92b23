// Package conflict collects destination collisions during moving and runs
// the end-of-run verification pass. Records are buffered per manifest,
// flushed to the run ledger, then consolidated and verified once all
// manifests are processed. Verification of a large backlog is gated behind
// an operator prompt because it rehashes both sides of every collision.
package conflict
