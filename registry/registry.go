package registry

import (
	"fmt"
	"sync"
)

// Registry is the name-indexed dispatch table of spec.md §3/§4.F: a map
// from a stable function name to the Adapter that knows how to decode
// arguments and encode results for that one signature. It is effectively
// read-only after startup (spec.md §5), so lookups take a read lock and
// registration a write lock.
type Registry struct {
	mu    sync.RWMutex
	table map[string]Adapter
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{table: make(map[string]Adapter)}
}

// Register installs fn under name with the given ResultOp. fn's
// parameter types declare, position by position, whether that argument
// is expected by value or by reference — see newFuncAdapter. Names must
// be globally unique and stable (spec.md §3 invariant 4); registering the
// same name twice is an error rather than a silent overwrite, since a
// second registration would break invariant 5 (idempotent lookup).
func (r *Registry) Register(name string, fn interface{}, op ResultOp) error {
	adapter, err := newFuncAdapter(name, fn, op)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.table[name]; exists {
		return fmt.Errorf("registry: %s already registered", name)
	}
	r.table[name] = adapter
	return nil
}

// Lookup returns the Adapter registered under name, if any.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.table[name]
	return a, ok
}
