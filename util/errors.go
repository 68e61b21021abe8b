package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Record file naming errors
	ErrInvalidRecordName = errors.New("invalid record file name format")

	// Atomic write errors
	ErrScratchDirMissing = errors.New("scratch directory does not exist")
)
