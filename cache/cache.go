// Package cache implements the common store contract shared by the
// replay cache, the reauthentication ticket cache and the authority
// cache: get/set/remove/iterate/destroy over string keys and JSON
// values, available in a volatile in-memory form and a persistent
// file-backed form.
package cache

import "errors"

// ErrNotFound is returned by Get when no entry exists for the given key.
var ErrNotFound = errors.New("cache: key not found")

// Store is the contract every cache implementation satisfies,
// parameterized over the value type it holds. Entry insertion is
// all-or-nothing: a Set that returns a nil error is guaranteed visible
// to a subsequent Get in the same process.
type Store[V any] interface {
	// Get returns the value stored under key, or ErrNotFound if absent.
	Get(key string) (V, error)

	// Set stores value under key, replacing any existing entry.
	Set(key string, value V) error

	// Remove deletes the entry under key, if any. Removing a missing
	// key is not an error.
	Remove(key string) error

	// Iterate calls fn once for every entry present at call time, in
	// no particular order, stopping early if fn returns false.
	Iterate(fn func(key string, value V) bool) error

	// Destroy releases any resources held by the store (open file
	// handles, the backing file itself for file-backed stores) and
	// renders the store unusable.
	Destroy() error
}
