// Package mover relocates claimed candidates into the destination tree and
// relocates the manifest file itself once its set is complete. Existing
// destination files are never overwritten; collisions are handed to the
// conflict resolver and the move continues with the remaining rows.
package mover
