package apperror

import "errors"

// Kind is the stable, machine-readable class of a domain failure.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindAlreadyMarked     Kind = "ALREADY_MARKED"
	KindNotEditable       Kind = "NOT_EDITABLE"
	KindQuotaExceeded     Kind = "QUOTA_EXCEEDED"
	KindNotAvailable      Kind = "NOT_AVAILABLE"
	KindInvalidRange      Kind = "INVALID_RANGE"
	KindEmptyClaim        Kind = "EMPTY_CLAIM"
	KindMissingReason     Kind = "MISSING_REASON"
)

// Error is a domain failure with a kind and a human-readable message.
// Domain packages declare them as sentinels and compare with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsExpected reports whether err is an expected user error rather than a
// server or data-integrity problem.
func IsExpected(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindInvalidRange, KindEmptyClaim, KindMissingReason, KindQuotaExceeded:
		return true
	}
	return false
}
