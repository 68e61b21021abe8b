package journal

import "errors"

// Sentinel errors for package journal.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Transaction discipline errors. These surface directly to callers as
	// hard failures; everything else is converted to a structured result.
	ErrTransactionActive = errors.New("a transaction is already active")
	ErrNoTransaction     = errors.New("no active transaction")

	// Entry errors
	ErrEntryNotFound = errors.New("entry not found")
	ErrStatusFinal   = errors.New("entry status is final and cannot change")

	// Lifecycle errors
	ErrJournalClosed = errors.New("journal is closed")
)
