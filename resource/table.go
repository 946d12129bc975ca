// Package resource implements the per-endpoint resource table: the map
// from a resource ID to its live, type-erased object plus the borrow
// discipline around it (spec.md §3, §4.E).
package resource

import (
	"errors"
	"sync"

	"github.com/magnusmorton/experiment-umi/id"
)

// ErrNotFound is returned by Take/Borrow/BorrowMut when the ID is absent.
var ErrNotFound = errors.New("resource: no such id")

// ErrBorrowConflict is returned when a borrow would overlap an existing
// exclusive borrow of the same ID, or an exclusive borrow would overlap
// any existing borrow. Per spec.md §4.E/§5 these are errors, not blocking
// waits: under the whole-table lock a single endpoint's own dispatch
// cannot legitimately produce the conflict, so seeing this error means a
// single request asked for two incompatible borrows of the same resource.
var ErrBorrowConflict = errors.New("resource: borrow conflict")

type entry struct {
	object    interface{}
	isRef     bool
	shared    int
	exclusive bool
}

// Table is the per-endpoint map from ID to (object, is_ref). It embeds a
// mutex that the dispatcher (endpoint package) holds for the full
// duration of one request — argument materialization, the call itself,
// and storing any new entries — so that request is atomic with respect to
// every other request on this endpoint (spec.md §5). The methods below
// assume the caller already holds that lock; Table itself does not
// re-lock around them.
type Table struct {
	sync.Mutex
	entries map[id.ID]*entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{entries: make(map[id.ID]*entry)}
}

// Insert stores object under id, either as the resource itself
// (isRef=false) or as an internal reference into something this process
// already owns (isRef=true).
func (t *Table) Insert(resourceID id.ID, object interface{}, isRef bool) {
	t.entries[resourceID] = &entry{object: object, isRef: isRef}
}

// Take removes and returns the entry for id. Used when an OwnedRemote
// argument targets this endpoint: the resource is being returned home and
// consumed.
func (t *Table) Take(resourceID id.ID) (object interface{}, isRef bool, err error) {
	e, ok := t.entries[resourceID]
	if !ok {
		return nil, false, ErrNotFound
	}
	delete(t.entries, resourceID)
	return e.object, e.isRef, nil
}

// Borrow acquires a shared borrow of id. The returned release func must be
// called once the borrow is no longer needed (the dispatcher calls it
// when the enclosing request finishes, mirroring the Rust reference
// implementation's RefCell borrow guard going out of scope).
func (t *Table) Borrow(resourceID id.ID) (object interface{}, isRef bool, release func(), err error) {
	e, ok := t.entries[resourceID]
	if !ok {
		return nil, false, nil, ErrNotFound
	}
	if e.exclusive {
		return nil, false, nil, ErrBorrowConflict
	}
	e.shared++
	return e.object, e.isRef, func() { e.shared-- }, nil
}

// BorrowMut acquires an exclusive borrow of id; see Borrow for the
// release contract.
func (t *Table) BorrowMut(resourceID id.ID) (object interface{}, isRef bool, release func(), err error) {
	e, ok := t.entries[resourceID]
	if !ok {
		return nil, false, nil, ErrNotFound
	}
	if e.exclusive || e.shared > 0 {
		return nil, false, nil, ErrBorrowConflict
	}
	e.exclusive = true
	return e.object, e.isRef, func() { e.exclusive = false }, nil
}

// Remove deletes id unconditionally. Used when a Drop message arrives.
func (t *Table) Remove(resourceID id.ID) {
	delete(t.entries, resourceID)
}

// Len reports the number of live entries; it locks internally so it can
// be called outside of a request (e.g. from a test asserting resource
// accounting per spec.md §8 property 4).
func (t *Table) Len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.entries)
}
