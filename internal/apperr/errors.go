package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers and for transport mapping.
type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidInput
	KindNotFound
	KindUploadFailure
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUploadFailure:
		return "upload_failure"
	case KindStorage:
		return "storage_error"
	default:
		return "unexpected"
	}
}

// Status returns the HTTP-equivalent status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code used in error responses.
func (k Kind) Code() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUploadFailure:
		return "UPLOAD_FAILED"
	case KindStorage:
		return "STORAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// Message is the stable message shown to callers when the error detail must not leak.
func (k Kind) Message() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "document not found"
	case KindUploadFailure:
		return "failed to upload document"
	case KindStorage:
		return "storage operation failed"
	default:
		return "an unexpected error occurred"
	}
}

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage is what a caller may see. Server-side kinds never expose wrapped detail.
func (e *Error) PublicMessage() string {
	if e.Kind.Status() >= http.StatusInternalServerError {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Kind.Message()
	}
	if e.Msg == "" {
		return e.Kind.Message()
	}
	return e.Msg
}

func InvalidInput(msg string) error { return &Error{Kind: KindInvalidInput, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func UploadFailure(msg string, err error) error {
	return &Error{Kind: KindUploadFailure, Msg: msg, Err: err}
}

func Storage(msg string, err error) error { return &Error{Kind: KindStorage, Msg: msg, Err: err} }

func Unexpected(msg string, err error) error {
	return &Error{Kind: KindUnexpected, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind at its outermost classified level.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
