// Package manifest parses the legacy CSV manifests
// (FileName,Size,CRC32,Path,Comment) that describe expected file sets.
// Historical exports are messy: optional headers, mixed encodings with and
// without BOMs, unescaped commas in path and comment fields, and duplicate
// checksum+size rows. Parsing is deliberately tolerant — a malformed row is
// dropped with a warning and the manifest continues.
package manifest
