package backlog

import "errors"

// Errors returned by this package.
var (
	ErrInvariantViolation = errors.New("backlog invariant violated")
	ErrInvalidIssue       = errors.New("issue number must be positive")
	ErrInvalidAction      = errors.New("invalid action")
	ErrDuplicateIssue     = errors.New("issue already in backlog")
	ErrIssueNotFound      = errors.New("issue not in backlog")
	ErrOrderOutOfRange    = errors.New("recommended order out of range")
	ErrNotFound           = errors.New("backlog file not found")
	ErrMalformed          = errors.New("malformed backlog document")
	ErrExists             = errors.New("backlog file already exists")
	ErrConflict           = errors.New("backlog changed since it was read")
)
