// Package main provides the djournal command-line interface.
//
// djournal is the metadata journal underlying a content-addressed virtual
// filesystem. It durably records intended and completed filesystem
// operations, snapshots the reconstructed state into checksummed
// checkpoints, and recovers a consistent state after an unclean shutdown by
// replaying only confirmed operations since the last valid checkpoint.
//
// The main binary supports multiple subcommands:
//   - inspect: Validate journal segments and checkpoints for corruption
//   - recover: Replay the journal and print the recovery report
//   - checkpoint: Force a checkpoint of the current state
//   - seed: Generate randomized journal activity for testing
package main
