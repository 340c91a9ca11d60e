package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindNotFound       ErrKind = "not_found"      // 404
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking provider/storage detail)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return New(KindValidation, "missing_field", "missing required field: "+field)
}

// ----------------------
// Auth errors (401)
// ----------------------

// Provider call failed or returned no identity.
func ErrIdentityExchange(cause error) *Error {
	return Wrap(KindAuth, "identity_exchange_failed", "identity provider exchange failed", cause)
}

// Identity bundle came back missing a required field. Treated the same as
// an exchange failure by callers: no viewer is produced.
func ErrIncompleteIdentity() *Error {
	return New(KindAuth, "incomplete_identity", "identity bundle missing required fields")
}

// Signature verification failed or the cookie is absent. Not surfaced to
// clients as an error; this is the expected guest path.
func ErrInvalidCookie(cause error) *Error {
	return Wrap(KindAuth, "cookie_invalid", "session cookie absent or unverifiable", cause)
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrViewerNotFound() *Error {
	return New(KindNotFound, "viewer_not_found", "viewer not found")
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "store_unavailable", "viewer store unavailable", cause)
}

func ErrAuthURLUnconfigured() *Error {
	return New(KindInternal, "auth_url_unconfigured", "provider auth URL not configured")
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "cookie signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
