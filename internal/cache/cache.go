// Package cache provides a small in-process cache for computed dashboard
// summaries.
package cache

// Cache is a keyed store of computed values that may drop entries at any time.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	// Clear drops every entry, e.g. after the underlying data changed.
	Clear()
	Len() int
}
