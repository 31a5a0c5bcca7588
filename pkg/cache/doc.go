// Package cache keeps the last body seen for each catalog page in Redis so
// that page fetches can be revalidated with conditional requests.
//
// Entries are never served blindly. The catalog client always issues the
// request; a cached entry only contributes its validators (ETag or
// Last-Modified) and, on a 304 Not Modified answer, its body. A Page is
// therefore always as fresh as the upstream says it is, and no page set is
// accumulated locally beyond what Redis retains for revalidation.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Endpoint: "api.artic.edu/api/v1/artworks",
//		Query:    url.Values{"page": []string{"3"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// plain request
//	}
//	cache.AddConditionalHeaders(req, entry)
//
// # Retention
//
// Redis keeps an entry until the response's Expires header, or for
// DefaultRetention when the upstream sends none.
package cache
