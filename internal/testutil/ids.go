package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns predetermined ids, then falls back to
// "<prefix>-<n>" once the list is used up.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	ids    []string
	n      int
}

// NewSequenceGenerator creates a generator that yields ids in order.
//
// Example:
//
//	gen := NewSequenceGenerator("order", "order-a")
//	gen.Generate() // "order-a"
//	gen.Generate() // "order-2"
func NewSequenceGenerator(prefix string, ids ...string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix, ids: ids}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	if g.n <= len(g.ids) {
		return g.ids[g.n-1]
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
