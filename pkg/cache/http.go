package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultRetention applies when the response carries no usable Expires header.
	DefaultRetention = 10 * time.Minute
)

// FromResponse reads a 200 response into an Entry.
// The response body is replaced with an in-memory copy so the caller can
// still decode it.
func FromResponse(resp *http.Response) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &Entry{
		Body:     body,
		ETag:     resp.Header.Get("ETag"),
		Expires:  retentionDeadline(resp.Header),
		StoredAt: time.Now(),
	}

	if lastModStr := resp.Header.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry, nil
}

// retentionDeadline picks the Expires header, falling back to DefaultRetention
// when it is missing, unparsable or already in the past.
func retentionDeadline(headers http.Header) time.Time {
	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return time.Now().Add(DefaultRetention)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil || expires.Before(time.Now()) {
		return time.Now().Add(DefaultRetention)
	}

	return expires
}

// AddConditionalHeaders sets If-None-Match, or If-Modified-Since when no ETag
// is known. A nil entry or request is ignored.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
	}
}
