package glerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way callers need to branch on it, rather
// than matching on message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindTransport
	KindDecode
	KindContentNotFound
	KindInvalidTransition
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindContentNotFound:
		return "content_not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can classify it
// with errors.As without string-matching messages.
type Error struct {
	Kind  Kind
	Op    string // the operation that failed, e.g. "upsert_content"
	Err   error
	Trace []byte // optional trace payload, set only for KindContentNotFound
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NotFound builds a KindNotFound error.
func NotFound(op string, err error) *Error {
	return New(KindNotFound, op, err)
}

// Conflict builds a KindConflict error.
func Conflict(op string, err error) *Error {
	return New(KindConflict, op, err)
}

// Transport builds a KindTransport error.
func Transport(op string, err error) *Error {
	return New(KindTransport, op, err)
}

// Decode builds a KindDecode error.
func Decode(op string, err error) *Error {
	return New(KindDecode, op, err)
}

// InvalidTransition builds a KindInvalidTransition error, e.g. recording a
// result against an audit that is not Pending.
func InvalidTransition(op string, err error) *Error {
	return New(KindInvalidTransition, op, err)
}

// ContentNotFound builds a KindContentNotFound error, optionally carrying
// the query trace gathered while searching.
func ContentNotFound(op string, trace []byte) *Error {
	return &Error{Kind: KindContentNotFound, Op: op, Trace: trace}
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
