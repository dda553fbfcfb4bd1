// Package cache stores rendered responses for a bounded time.
package cache

import (
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Entry is one stored response.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

func (e *Entry) cost() int64 {
	n := int64(len(e.Body)) + 64
	for k, vs := range e.Header {
		n += int64(len(k))
		for _, v := range vs {
			n += int64(len(v))
		}
	}
	return n
}

// Cache is the response cache the HTTP layer is written against.
type Cache interface {
	Get(key string) (*Entry, bool)
	// Set reports whether entry was stored. A full cache may drop writes.
	Set(key string, entry *Entry, ttl time.Duration) bool
	// Clear drops every entry.
	Clear()
}

// RistrettoCache is a Cache bounded by total response size.
type RistrettoCache struct {
	c *ristretto.Cache[string, *Entry]
}

// NewRistrettoCache creates a cache holding at most maxBytes of responses.
func NewRistrettoCache(maxBytes int64) (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Entry]{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache{c: c}, nil
}

func (r *RistrettoCache) Get(key string) (*Entry, bool) {
	return r.c.Get(key)
}

// Set stores entry and waits for ristretto's write buffer to drain, so a Get
// that follows observes it. It returns false when ristretto dropped the write
// or its admission policy turned the entry away.
func (r *RistrettoCache) Set(key string, entry *Entry, ttl time.Duration) bool {
	if !r.c.SetWithTTL(key, entry, entry.cost(), ttl) {
		return false
	}
	r.c.Wait()
	_, ok := r.c.Get(key)
	return ok
}

func (r *RistrettoCache) Clear() {
	r.c.Clear()
}

func (r *RistrettoCache) Close() {
	r.c.Close()
}

// Nop never stores anything. It backs servers run with caching disabled.
type Nop struct{}

func (Nop) Get(string) (*Entry, bool) {
	return nil, false
}

func (Nop) Set(string, *Entry, time.Duration) bool {
	return false
}

func (Nop) Clear() {}
