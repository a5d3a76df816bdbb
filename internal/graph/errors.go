package graph

import "errors"

var (
	// ErrRefNotFound is returned when the requested scope does not resolve.
	ErrRefNotFound = errors.New("ref not found")

	// ErrCommitNotFound is returned by commit providers for unreadable commits.
	ErrCommitNotFound = errors.New("commit not found")
)
