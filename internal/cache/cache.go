// Package cache memoizes derived activity views. Keys embed a content
// hash of the input record set, so a cached view is valid exactly as long
// as the records that produced it; recomputation stays the source of
// truth and the cache is only ever a shortcut to an identical result.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/maypok86/otter/v2"
)

// View is a TTL-bounded cache for one derived view type.
type View[V any] struct {
	cache *otter.Cache[string, V]
}

// NewView creates a view cache. Capacity is modest on purpose: entries
// are whole derived views (a year grid, a day receipt), not rows.
func NewView[V any](ttl time.Duration) *View[V] {
	return &View[V]{
		cache: otter.Must(&otter.Options[string, V]{
			MaximumSize:      1024,
			InitialCapacity:  64,
			ExpiryCalculator: otter.ExpiryWriting[string, V](ttl),
		}),
	}
}

func (v *View[V]) Get(key string) (V, bool) {
	return v.cache.GetIfPresent(key)
}

func (v *View[V]) Set(key string, value V) {
	v.cache.Set(key, value)
}

// InvalidateAll drops every cached view. Called when a records-changed
// event arrives; the next read recomputes from the store.
func (v *View[V]) InvalidateAll() {
	v.cache.InvalidateAll()
}

// Fingerprint hashes a set of record identity lines into a hex key
// fragment. Lines are sorted first so the fingerprint depends only on the
// record set, not on fetch order.
func Fingerprint(lines []string) string {
	sorted := make([]string, len(lines))
	copy(sorted, lines)
	sort.Strings(sorted)

	h := sha256.New()
	for _, line := range sorted {
		h.Write([]byte(line))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
