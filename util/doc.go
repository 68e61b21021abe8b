// Package util provides low-level utilities for the djournal metadata journal.
//
// This package contains the building blocks shared by the journal core and the
// command-line tooling:
//
// Durable writes:
//   - Atomic file replacement via a scratch-directory temp file followed by
//     os.Rename, so a crash mid-write never exposes a half-written record
//   - JSON encode/decode helpers layered on the atomic writer
//
// Hashing:
//   - SHA-256 content identifiers for content-addressed payloads
//   - xxh3-128 checksums for checkpoint integrity verification
//
// File naming:
//   - Timestamped record file names in the form
//     "<prefix>-<unixnano>-<bucket>-<suffix>.json", where the bucket is a
//     color hash of the record id and the suffix is the leading portion of
//     that id. The embedded timestamp makes segment ordering independent of
//     filesystem mtimes.
package util
