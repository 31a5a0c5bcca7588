package cache

import (
	"time"
)

// Entry is a stored catalog page response.
type Entry struct {
	// Body is the raw JSON payload.
	Body []byte `json:"body"`

	// ETag for If-None-Match.
	ETag string `json:"etag,omitempty"`

	// LastModified for If-Modified-Since.
	LastModified time.Time `json:"last_modified,omitempty"`

	// Expires bounds how long Redis retains the entry.
	Expires time.Time `json:"expires"`

	// StoredAt is when the entry was written.
	StoredAt time.Time `json:"stored_at"`
}

// IsExpired reports whether the retention window has passed.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the remaining retention, or 0 once expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// HasValidators reports whether the entry can back a conditional request.
func (e *Entry) HasValidators() bool {
	if e == nil {
		return false
	}
	return e.ETag != "" || !e.LastModified.IsZero()
}
