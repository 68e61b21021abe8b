// Package cmd implements the djournal command-line interface.
//
// Each subcommand is built by a New<Name>Cmd constructor and wired onto the
// root command in NewRootCmd. The commands are operational tooling for
// journal directories: offline validation (inspect), recovery runs
// (recover), forced checkpoints (checkpoint), synthetic load generation
// (seed), and build information (version).
package cmd
