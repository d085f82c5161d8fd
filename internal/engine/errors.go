package engine

import "errors"

// Business-level sentinels. Storage-level ones (ErrNotFound, ErrConflict,
// ErrConcurrency) live in the repository package; together they form the
// full error taxonomy callers branch on.
var (
	// ErrInvalidState: a state-machine transition was attempted from a
	// state that does not allow it: approving a non-pending request,
	// accepting a revoked invite, removing the group owner.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized: the acting user lacks the required role for the
	// operation. Decided here, not in the individual stores.
	ErrUnauthorized = errors.New("unauthorized")
)
