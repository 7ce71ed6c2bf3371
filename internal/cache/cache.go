// Package cache provides the TTL key/value store behind the pending-request
// registry and the in-flight decision guard.
package cache

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrExists is returned by Add when the key is already present
var ErrExists = errors.New("cache key exists")

// NoExpiration keeps an item until it is deleted
const NoExpiration time.Duration = -1

// Cache defines the interface for TTL caching
type Cache interface {
	Get(key string) (any, bool)
	// Set and Add take a TTL: 0 uses the cache default, NoExpiration
	// never expires.
	Set(key string, value any, ttl time.Duration)
	// Add stores value only if key is absent or expired. It is atomic.
	Add(key string, value any, ttl time.Duration) error
	Delete(key string)
	// Keys returns the live keys starting with prefix, sorted.
	Keys(prefix string) []string
	Clear()
}

// Key joins a namespace and its parts into a cache key, e.g.
// Key("pending", "vault-1", "alice") → "vaultgate:v1:pending:vault-1:alice".
// Parts are escaped so a ':' inside one cannot collide with another key.
func Key(namespace string, parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.QueryEscape(p)
	}
	return "vaultgate:v1:" + namespace + ":" + strings.Join(escaped, ":")
}
