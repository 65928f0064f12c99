package portal

import "github.com/pkg/errors"

var (
	ErrNotAuthenticated = errors.New("you must be logged in")
	ErrForbidden        = errors.New("only admins can do this")
	ErrUnknownSection   = errors.New("unknown section")
	ErrUnknownList      = errors.New("unknown collection")
	ErrNotFound         = errors.New("record not found")
	ErrNoPendingPrompt  = errors.New("there is nothing to confirm")
)
