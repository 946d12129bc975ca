package registry

// ArgKind tags the six shapes an adapter's Call can receive for a single
// formal parameter (spec.md §4.F).
type ArgKind string

const (
	ArgSerialised   ArgKind = "serialised"
	ArgOwned        ArgKind = "owned"
	ArgRef          ArgKind = "ref"
	ArgMutRef       ArgKind = "mut_ref"
	ArgRemoteRef    ArgKind = "remote_ref"
	ArgRemoteMutRef ArgKind = "remote_mut_ref"
)

// WireArg is one decoded-from-the-wire argument handed to an Adapter, one
// of the six variants the dispatcher in endpoint.go can produce while
// materializing a Variable (spec.md §4.F/§4.G).
type WireArg struct {
	Kind       ArgKind
	Serialised string      // ArgSerialised, ArgRemoteRef, ArgRemoteMutRef
	Object     interface{} // ArgOwned, ArgRef, ArgMutRef: resource moved out of / referenced into the table
	IsRef      bool        // ArgRef, ArgMutRef: the table entry itself is a reference, not the resource
}

func Serialised(s string) WireArg { return WireArg{Kind: ArgSerialised, Serialised: s} }

func Owned(object interface{}) WireArg { return WireArg{Kind: ArgOwned, Object: object} }

func Ref(object interface{}, isRef bool) WireArg {
	return WireArg{Kind: ArgRef, Object: object, IsRef: isRef}
}

func MutRef(object interface{}, isRef bool) WireArg {
	return WireArg{Kind: ArgMutRef, Object: object, IsRef: isRef}
}

func RemoteRef(s string) WireArg { return WireArg{Kind: ArgRemoteRef, Serialised: s} }

func RemoteMutRef(s string) WireArg { return WireArg{Kind: ArgRemoteMutRef, Serialised: s} }

// Borrower is implemented by proxy types constructed from a RemoteRef or
// RemoteMutRef argument. MarkBorrowed clears the decoded proxy's owner
// flag so that, should the callee drop it, no Drop is sent — the
// argument is a borrow, not a transferred ownership (spec.md §4.F: "call
// borrow_remote, which produces a non-owning clone with is_owner=false").
type Borrower interface {
	MarkBorrowed()
}

// LocalityTagger is implemented by proxy types that distinguish a Local
// value (owned by this process) from a Remote one (already a proxy
// elsewhere). Adapter results that don't implement it are treated as
// always-local, non-proxy values (spec.md §4.F).
type LocalityTagger interface {
	TaggedString() (encoded string, isLocal bool)
}
