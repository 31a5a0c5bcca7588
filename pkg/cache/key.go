package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "catalog"

// Key identifies one cached page response.
type Key struct {
	// Endpoint is host and path of the collection, e.g. "api.artic.edu/api/v1/artworks".
	Endpoint string

	// Query holds the request query (page, limit, fields).
	Query url.Values
}

// KeyForURL builds a Key from a request URL.
func KeyForURL(u *url.URL) Key {
	return Key{
		Endpoint: u.Host + u.Path,
		Query:    u.Query(),
	}
}

// String renders a deterministic Redis key.
// Format: catalog:host/path:name=value:name=value (query names sorted).
//
// Example:
//
//	catalog:api.artic.edu/api/v1/artworks:limit=12:page=3
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if endpoint := strings.Trim(k.Endpoint, "/"); endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, strings.Join(k.Query[name], ",")))
		}
	}

	return strings.Join(parts, ":")
}
