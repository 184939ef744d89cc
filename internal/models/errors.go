package models

import "fmt"

// Collaborator failure codes shared across transcript, model and sink calls.
const (
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeBadURL        = "bad_url"
	ErrCodeServerError   = "server_error"
	ErrCodeTimeout       = "timeout"
	ErrCodeOverloaded    = "overloaded"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInvalidJSON   = "invalid_json"
	ErrCodeNoAPIKeys     = "no_api_keys"
	ErrCodeAllFailed     = "all_failed"
	ErrCodeJobTimeout    = "job_timeout"
	ErrCodeTranscription = "transcription_error"
	ErrCodeValidation    = "validation_failed"
	ErrCodeProcessing    = "processing_error"
)

// TypedError carries the {code, detail} shape every collaborator failure is
// reported with. Code is stable and machine-checked; Detail is for humans.
type TypedError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *TypedError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func NewTypedError(code, detail string) *TypedError {
	return &TypedError{Code: code, Detail: detail}
}

// IsTransient reports whether a failure is worth retrying: rate limits,
// server-side errors, timeouts and overload signals. Auth and bad-input
// failures are fatal for the attempt.
func IsTransient(err error) bool {
	te, ok := err.(*TypedError)
	if !ok {
		return false
	}
	switch te.Code {
	case ErrCodeRateLimited, ErrCodeServerError, ErrCodeTimeout, ErrCodeOverloaded:
		return true
	}
	return false
}

// AsTypedError unwraps err to a TypedError, synthesizing a processing_error
// for anything untyped so callers always have a {code, detail} to report.
func AsTypedError(err error) *TypedError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*TypedError); ok {
		return te
	}
	return &TypedError{Code: ErrCodeProcessing, Detail: err.Error()}
}
