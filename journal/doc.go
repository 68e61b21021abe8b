// Package journal implements the metadata journal for a content-addressed
// virtual filesystem.
//
// The journal durably records intended and completed filesystem operations,
// periodically snapshots the reconstructed filesystem state into checksummed
// checkpoints, and recovers a consistent state after an unclean shutdown by
// replaying only confirmed operations since the last valid checkpoint.
//
// Key components:
//
// Entry log and transaction buffer:
//   - Append-only ordered record of operation entries for the current segment
//   - One active transaction per journal instance, no nesting; entries
//     buffered in a transaction share one transaction id assigned at commit
//   - Structural operations (CREATE, DELETE, RENAME) flush to disk
//     immediately; everything else waits for the next scheduled sync
//
// Materialized state table:
//   - Path-indexed metadata view derived exclusively by applying COMPLETED
//     entries; never edited directly, never persisted incrementally
//
// Checkpoints:
//   - Point-in-time snapshots of the state table with an xxh3-128 checksum
//     over a canonical serialization, written atomically
//   - Created explicitly, on a fixed interval, or when the active segment
//     exceeds an entry-count threshold
//   - Pruning retains the N most recent checkpoints and deletes segments
//     the oldest retained checkpoint has subsumed
//
// Recovery:
//   - Loads the newest checkpoint whose recomputed checksum verifies, then
//     replays subsequent segments in order, applying only COMPLETED entries
//   - Best-effort by construction: corrupt files are reported and skipped
//
// Background scheduler:
//   - One periodic loop sharing the journal lock with foreground calls,
//     with a guaranteed final flush on clean shutdown
//
// Every durable write goes through a scratch-directory temp file and an
// atomic rename, so a crash never exposes a half-written segment or
// checkpoint. All public operations serialize through a single mutex.
//
// The Manager type layers logical filesystem calls on top: each call wraps
// one transaction around a pluggable Filesystem backend, recording intent
// before the backend acts and the confirmed outcome after.
package journal
