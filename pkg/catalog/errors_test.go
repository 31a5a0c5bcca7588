package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FetchError
		want string
	}{
		{
			name: "with status",
			err: &FetchError{
				Page:       2,
				StatusCode: 503,
				Class:      ErrorClassServer,
				Err:        errors.New("unexpected status 503 Service Unavailable"),
			},
			want: "fetch page 2: server error (status 503): unexpected status 503 Service Unavailable",
		},
		{
			name: "transport failure",
			err: &FetchError{
				Page:  1,
				Class: ErrorClassNetwork,
				Err:   errors.New("connection refused"),
			},
			want: "fetch page 1: network error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("%w: missing data", ErrMalformedResponse)
	var err error = &FetchError{Page: 4, Class: ErrorClassMalformed, Err: wrapped}

	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("errors.Is should find ErrMalformedResponse through FetchError")
	}

	var fe *FetchError
	if !errors.As(fmt.Errorf("load: %w", err), &fe) {
		t.Fatal("errors.As should find *FetchError")
	}
	if fe.Page != 4 {
		t.Errorf("Page = %d, want 4", fe.Page)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorClass
	}{
		{http.StatusBadRequest, ErrorClassClient},
		{http.StatusNotFound, ErrorClassClient},
		{http.StatusTooManyRequests, ErrorClassRateLimit},
		{http.StatusInternalServerError, ErrorClassServer},
		{http.StatusBadGateway, ErrorClassServer},
		{http.StatusNotModified, ErrorClassUnexpected},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			if got := classifyStatus(tt.code); got != tt.want {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}
