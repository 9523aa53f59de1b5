// Package apperr defines the error kinds surfaced by the staging pipeline
// and how they map onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindUpstreamFetch     Kind = "upstream_fetch"
	KindMissingAsset      Kind = "missing_asset"
	KindNoUsableImages    Kind = "no_usable_images"
	KindPersistence       Kind = "persistence"
	KindRemoteUnavailable Kind = "remote_unavailable"
	KindInternal          Kind = "internal"
)

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrMissingAsset) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUpstreamFetch     = &Error{Kind: KindUpstreamFetch}
	ErrMissingAsset      = &Error{Kind: KindMissingAsset}
	ErrNoUsableImages    = &Error{Kind: KindNoUsableImages}
	ErrPersistence       = &Error{Kind: KindPersistence}
	ErrRemoteUnavailable = &Error{Kind: KindRemoteUnavailable}
)

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func UpstreamFetch(message string, err error) *Error {
	return New(KindUpstreamFetch, message, err)
}

func MissingAsset(productID string) *Error {
	return New(KindMissingAsset, fmt.Sprintf("Missing processed image for product %s", productID), nil)
}

func NoUsableImages() *Error {
	return New(KindNoUsableImages, "No product images were available. Try uploading an image directly.", nil)
}

func Persistence(message string, err error) *Error {
	return New(KindPersistence, message, err)
}

func RemoteUnavailable(message string, err error) *Error {
	return New(KindRemoteUnavailable, message, err)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err. Causes of internal
// errors are not exposed.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
	return "internal error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindMissingAsset:
		return http.StatusNotFound
	case KindNoUsableImages:
		return http.StatusUnprocessableEntity
	case KindUpstreamFetch, KindRemoteUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
