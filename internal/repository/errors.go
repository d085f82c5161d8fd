package repository

import "errors"

// Sentinel errors shared by every store implementation. The engine and the
// API layer branch on these with errors.Is; wrapped variants carry the
// operation that failed.
var (
	// ErrNotFound: the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the write would violate a uniqueness constraint
	// (duplicate membership, duplicate pending join request, taken email).
	ErrConflict = errors.New("conflict")

	// ErrConcurrency: a serializable transaction kept colliding and the
	// retry budget ran out. The whole use-case can be retried later.
	ErrConcurrency = errors.New("concurrent update, retry")
)
