// Package id defines the resource identifiers UMI endpoints hand out and
// the generator that mints them.
package id

import (
	"fmt"
	"sync"
	"time"
)

// ID is a resource identifier, unique within the lifetime of the endpoint
// that generated it. It is opaque to remote parties: they carry it back
// and forth but never interpret it.
type ID struct {
	Timestamp time.Time `json:"timestamp"`
	Counter   uint64    `json:"counter"`
}

// Zero reports whether id is the zero value, i.e. never generated by a
// Generator. Useful for sanity checks in tests and log lines.
func (i ID) Zero() bool {
	return i.Counter == 0 && i.Timestamp.IsZero()
}

func (i ID) String() string {
	return fmt.Sprintf("%d@%s", i.Counter, i.Timestamp.Format(time.RFC3339Nano))
}

// Generator mints monotonically increasing IDs for a single endpoint. The
// counter disambiguates IDs minted within the same process lifetime; the
// timestamp disambiguates across process restarts for logs and traces. Per
// spec.md §4.A correctness never depends on wall-clock monotonicity, only
// the counter does.
type Generator struct {
	mu      sync.Mutex
	counter uint64
}

// NewGenerator returns a Generator starting at counter 1.
func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns a fresh ID. Safe for concurrent use.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return ID{Timestamp: time.Now(), Counter: g.counter}
}
