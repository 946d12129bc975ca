// Package proxy implements the client-side proxy lifecycle of spec.md
// §3/§4.H: the Remote half of a proxy's Local/Remote dichotomy, ownership
// transfer on send, remote-drop on destruction, and the append-only
// client borrow-slot.
//
// Go has no destructors, so "remote-drop on destruction" (spec.md §4.H)
// is approximated rather than guaranteed: every owning Remote registers a
// runtime.SetFinalizer that fires Close when the garbage collector proves
// it unreachable, and callers that care about prompt cleanup should call
// Close explicitly instead of waiting on the collector. This is recorded
// as an Open Question decision in DESIGN.md.
package proxy

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/id"
	"github.com/magnusmorton/experiment-umi/transport"
	"github.com/magnusmorton/experiment-umi/wire"
)

// Remote is a handle to a resource living on another endpoint: the
// bookkeeping half of ProxyHandle⟨T⟩'s Remote variant (spec.md §3). App
// proxy types embed *Remote and add the Local variant's own fields plus
// the per-method dichotomy (spec.md §4.H); Remote itself carries only
// what every remote handle needs regardless of T.
type Remote struct {
	Address string
	ID      id.ID
	owner   atomic.Bool
}

// NewOwning builds a Remote that owns the resource at (address, id): its
// destruction (Close, or the finalizer backstop) will emit a Drop.
func NewOwning(address string, resourceID id.ID) *Remote {
	r := &Remote{Address: address, ID: resourceID}
	r.owner.Store(true)
	runtime.SetFinalizer(r, (*Remote).finalize)
	return r
}

// NewBorrowing builds a Remote that never owns the resource: its
// destruction never emits a Drop. Used for RefRemote/MutRefRemote
// arguments and for RefBorrow/MutRefBorrow results.
func NewBorrowing(address string, resourceID id.ID) *Remote {
	return &Remote{Address: address, ID: resourceID}
}

// IsOwner reports whether this handle currently owns the resource.
func (r *Remote) IsOwner() bool {
	return r.owner.Load()
}

// TransferOwnership clears this handle's owner flag and reports whether
// it was set beforehand. Stub code calls this when a proxy value is
// passed by move as an Invoke argument (spec.md §4.H): the caller must
// build the outgoing OwnedRemote Variable with owner already cleared,
// per invariant 1 in spec.md §3.
func (r *Remote) TransferOwnership() bool {
	return r.owner.Swap(false)
}

// MarkBorrowed implements registry.Borrower: it is called when this
// Remote was itself materialized by decoding a RemoteRef/RemoteMutRef
// wire argument server-side, i.e. it is a borrow_remote clone and must
// never own the resource (spec.md §4.F).
func (r *Remote) MarkBorrowed() {
	r.owner.Store(false)
}

// Close sends a Drop for this handle's ID iff it is still the owner,
// matching the destructor contract of spec.md §4.H. Transport errors are
// ignored: the remote endpoint may already be gone (spec.md §7, "Drop
// send failure — suppressed on the sender; resource may leak on the
// peer"). Calling Close more than once, or on a borrowing handle, is a
// no-op.
func (r *Remote) Close() {
	if !r.owner.Swap(false) {
		return
	}
	runtime.SetFinalizer(r, nil)
	if _, err := transport.Send(r.Address, wire.Drop(r.ID)); err != nil {
		glog.V(1).Infof("proxy: drop %s@%s failed (peer may be gone): %v", r.ID, r.Address, err)
	}
}

func (r *Remote) finalize() {
	r.Close()
}

func (r *Remote) String() string {
	return fmt.Sprintf("Remote(%s, %s, owner=%v)", r.Address, r.ID, r.IsOwner())
}

// handleJSON is the JSON wire shape a Variable's encoded_handle carries
// for a proxy argument (spec.md §3): just enough to rebuild a non-owning
// Remote at the next hop. The owner flag is never serialized — a decoded
// handle is always a borrow_remote clone (spec.md §4.F), never an owner.
type handleJSON struct {
	Address string `json:"address"`
	ID      id.ID  `json:"id"`
}

// Encode returns the JSON form of r's address+id, for embedding as the
// encoded_handle of an OwnedRemote/RefRemote/MutRefRemote Variable. This
// is what a nested call's registry.ArgRemoteRef/ArgRemoteMutRef path
// decodes back into a proxy (spec.md §4.F, §8 property 1) when the
// resource doesn't live on the endpoint handling the forward.
func (r *Remote) Encode() string {
	b, err := json.Marshal(handleJSON{Address: r.Address, ID: r.ID})
	if err != nil {
		// Address is a plain string and ID's fields always marshal; this
		// path is unreachable in practice.
		return "{}"
	}
	return string(b)
}

// DecodeHandle parses the JSON form Encode produces back into a
// non-owning Remote, the client-side half of "decode the proxy" in
// spec.md §4.F's RemoteRef/RemoteMutRef adapter branch.
func DecodeHandle(encoded string) (*Remote, error) {
	var h handleJSON
	if err := json.Unmarshal([]byte(encoded), &h); err != nil {
		return nil, fmt.Errorf("proxy: decode handle: %w", err)
	}
	return NewBorrowing(h.Address, h.ID), nil
}

// Slot is the append-only client-side store backing references returned
// from Ref/MutRef calls (spec.md §5, §9 "Borrow-slot on the client").
// Entries are never removed: this trades space for the simplicity the
// spec explicitly calls out as a deliberate choice.
type Slot struct {
	mu      sync.Mutex
	entries []*Remote
}

// NewSlot returns an empty Slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Append stores r and returns it back, for chaining at the call site.
func (s *Slot) Append(r *Remote) *Remote {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, r)
	return r
}

// Len reports how many handles the slot has accumulated.
func (s *Slot) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Default is the process-wide borrow-slot generated stubs append to,
// mirroring the reference implementation's single global slot.
var Default = NewSlot()
