package services

import "errors"

// Sentinel errors for the core engine. Controllers map these onto HTTP
// statuses with errors.Is; anything else is a storage failure and is
// reported generically.
var (
	// ErrValidation marks malformed input: bad date strings, weekday
	// outside 0-6, missing required fields.
	ErrValidation = errors.New("validation error")

	// ErrNotOwner marks a mutation attempt on a habit the caller does
	// not own. Distinct from ErrNotFound so callers can tell "not
	// yours" from "does not exist".
	ErrNotOwner = errors.New("not the habit owner")

	// ErrNotFound marks a missing habit, user or history entry.
	ErrNotFound = errors.New("record not found")
)
