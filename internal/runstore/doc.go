// Package runstore persists the per-run reconciliation ledger — claims,
// destination conflicts, and manifest outcomes — in SQLite. The ledger
// exists for auditability and for buffering conflict records with bounded
// memory; it is never consulted when matching, so runs stay independent.
package runstore
