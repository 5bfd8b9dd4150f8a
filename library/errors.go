package library

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed library operation. Every failure the core can
// produce is one of these; callers branch on the kind, not on message text.
type ErrorKind int

const (
	// KindNotFound reports a book, user, or transaction lookup miss.
	KindNotFound ErrorKind = iota
	// KindDuplicate reports an insert or registration with a key already present.
	KindDuplicate
	// KindUnavailable reports a borrow attempt with no copies on the shelf.
	KindUnavailable
	// KindLimitExceeded reports a borrow attempt past the user's cap.
	KindLimitExceeded
	// KindInvalidState reports an operation invalid for the entity's current
	// state, such as returning a transaction twice.
	KindInvalidState
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindDuplicate:
		return "duplicate"
	case KindUnavailable:
		return "unavailable"
	case KindLimitExceeded:
		return "limit exceeded"
	case KindInvalidState:
		return "invalid state"
	}
	return "unknown"
}

// Error is the single error type returned by the core. It carries the kind of
// invariant that was violated plus a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a library Error of the given kind, unwrapping
// as needed.
func IsKind(err error, kind ErrorKind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}
