package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors wrapped by FetchError.
var (
	// ErrMalformedResponse means the payload lacked data or a record id.
	ErrMalformedResponse = errors.New("malformed catalog response")

	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("page number must be >= 1")

	// ErrRateLimited means the local rate limit gate refused the request.
	ErrRateLimited = errors.New("request blocked: rate limit critical")
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses and invalid input.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and local gate blocks.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassMalformed represents undecodable or incomplete payloads.
	ErrorClassMalformed ErrorClass = "malformed"

	// ErrorClassUnexpected represents any other non-2xx status.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// FetchError reports a failed page fetch.
type FetchError struct {
	Page       int
	StatusCode int
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d: %s error (status %d): %v",
			e.Page, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch page %d: %s error: %v", e.Page, e.Class, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx status to its ErrorClass.
func classifyStatus(code int) ErrorClass {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case code >= 400 && code < 500:
		return ErrorClassClient
	case code >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}
