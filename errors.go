package llmtel

import "errors"

var (
	// ErrInvocationNotFound is returned by Stop and Fail when no OPEN
	// invocation exists for the run ID. It means Start and Stop are mismatched.
	ErrInvocationNotFound = errors.New("invocation not found")

	// ErrDuplicateInvocation is returned by Start when the run ID is already OPEN.
	// The existing invocation is left untouched.
	ErrDuplicateInvocation = errors.New("invocation already started")

	// ErrNilRunID is returned when uuid.Nil is used as a run ID.
	ErrNilRunID = errors.New("run ID is nil")
)
