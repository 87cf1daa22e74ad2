package engine

import "fmt"

// ReferenceError reports a command that named an unknown branch or thread.
// No mutation is performed when one is returned.
type ReferenceError struct {
	Kind string // "branch" or "thread"
	Ref  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %s", e.Kind, e.Ref)
}

// ValidationError reports a structurally invalid request, such as a
// combination with fewer than two branches. No mutation is performed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func refErr(kind, ref string) error {
	return &ReferenceError{Kind: kind, Ref: ref}
}

func validationErr(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
