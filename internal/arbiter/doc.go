// Package arbiter assigns candidate files to manifest rows and evaluates
// per-manifest completeness. Arbitration is strictly sequential: the
// at-most-one-claim-per-candidate invariant requires a serialized
// read-modify-write over the global claim set, and the first-available
// policy only stays deterministic when manifests and candidates are visited
// in a fixed order.
package arbiter
