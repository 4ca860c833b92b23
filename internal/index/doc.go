// Package index enumerates the physical file pool and builds the
// composite-key candidate index used for claim arbitration. Candidate order
// is lexicographic by path, sorted explicitly after enumeration, so claim
// assignment is deterministic across hosts instead of depending on
// filesystem enumeration order.
package index
