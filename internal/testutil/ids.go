package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns "<prefix>-0001", "<prefix>-0002", ... in order.
//
// It satisfies resolver.IDGenerator. Thread-safe.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator with the given prefix.
// An empty prefix defaults to "evt".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "evt"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
