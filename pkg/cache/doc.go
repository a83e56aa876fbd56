// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
// The catalog uses it to keep product listings and categories between page
// views so the storefront does not hit the backend on every navigation:
//
//	c := cache.New[string, []apiclient.Product](64, cache.WithTTL[string, []apiclient.Product](5*time.Minute))
//	c.Put("products", products)
//	if products, ok := c.Get("products"); ok {
//		// served from memory
//	}
//
// Expired entries are removed lazily on access. Eviction of the least
// recently used entry happens when Put pushes the cache over capacity; an
// eviction callback can be registered with WithEvictCallback.
package cache
