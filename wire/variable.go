// Package wire implements the UMI wire message model: the Invoke/Return/
// Drop message taxonomy (spec.md §3, §4.C) and its line-delimited JSON
// framing.
package wire

import (
	"github.com/magnusmorton/experiment-umi/id"
)

// VariableKind tags the four shapes an Invoke argument can take.
type VariableKind string

const (
	// KindOwnedLocal carries a serialized value; its encoding is authoritative.
	KindOwnedLocal VariableKind = "owned_local"
	// KindOwnedRemote is an owning proxy being passed; the sender has already
	// cleared its own owner flag before transmission.
	KindOwnedRemote VariableKind = "owned_remote"
	// KindRefRemote is a shared borrow of a remote resource.
	KindRefRemote VariableKind = "ref_remote"
	// KindMutRefRemote is an exclusive borrow of a remote resource.
	KindMutRefRemote VariableKind = "mut_ref_remote"
)

// Variable is one formal argument on the wire, exactly one of the four
// shapes in spec.md §3. Address/ID are only meaningful for the Remote
// variants; Encoded always carries either the serialized value
// (OwnedLocal) or the serialized proxy handle (the other three).
type Variable struct {
	Kind    VariableKind `json:"kind"`
	Encoded string       `json:"encoded"`
	Address string       `json:"address,omitempty"`
	ID      id.ID        `json:"id,omitempty"`
}

// OwnedLocal builds a by-value argument from its JSON encoding.
func OwnedLocal(encoded string) Variable {
	return Variable{Kind: KindOwnedLocal, Encoded: encoded}
}

// OwnedRemote builds an owning-proxy argument. Callers must have already
// cleared their local owner flag (invariant 1 in spec.md §3) before
// constructing this.
func OwnedRemote(encodedHandle, address string, resourceID id.ID) Variable {
	return Variable{Kind: KindOwnedRemote, Encoded: encodedHandle, Address: address, ID: resourceID}
}

// RefRemote builds a shared-borrow argument.
func RefRemote(encodedHandle, address string, resourceID id.ID) Variable {
	return Variable{Kind: KindRefRemote, Encoded: encodedHandle, Address: address, ID: resourceID}
}

// MutRefRemote builds an exclusive-borrow argument.
func MutRefRemote(encodedHandle, address string, resourceID id.ID) Variable {
	return Variable{Kind: KindMutRefRemote, Encoded: encodedHandle, Address: address, ID: resourceID}
}

// ReturnKind tags the six shapes a Return can take.
type ReturnKind string

const (
	// ReturnOwned carries the result by value (or an already-local proxy).
	ReturnOwned ReturnKind = "owned"
	// ReturnOwnedInit is the response to an Init call: a fresh resource has
	// been stored server-side and the caller gets an owning proxy to it.
	ReturnOwnedInit ReturnKind = "owned_init"
	// ReturnRefOwned: the server boxed a reference into its table; the
	// caller owns the reference slot (not the underlying resource).
	ReturnRefOwned ReturnKind = "ref_owned"
	// ReturnMutRefOwned is the exclusive-borrow analogue of ReturnRefOwned.
	ReturnMutRefOwned ReturnKind = "mut_ref_owned"
	// ReturnRefBorrow: the result is itself a remote reference elsewhere;
	// Encoded carries the proxy serialization.
	ReturnRefBorrow ReturnKind = "ref_borrow"
	// ReturnMutRefBorrow is the exclusive-borrow analogue of ReturnRefBorrow.
	ReturnMutRefBorrow ReturnKind = "mut_ref_borrow"
)

// ReturnVariable is the payload of a Return message (spec.md §3).
type ReturnVariable struct {
	Kind    ReturnKind `json:"kind"`
	Encoded string     `json:"encoded,omitempty"`
	Address string     `json:"address,omitempty"`
	ID      id.ID      `json:"id,omitempty"`
	IsOwner bool       `json:"is_owner,omitempty"`
}

func Owned(encoded string) ReturnVariable {
	return ReturnVariable{Kind: ReturnOwned, Encoded: encoded}
}

func OwnedInit(address string, resourceID id.ID, isOwner bool) ReturnVariable {
	return ReturnVariable{Kind: ReturnOwnedInit, Address: address, ID: resourceID, IsOwner: isOwner}
}

func RefOwned(address string, resourceID id.ID) ReturnVariable {
	return ReturnVariable{Kind: ReturnRefOwned, Address: address, ID: resourceID}
}

func MutRefOwned(address string, resourceID id.ID) ReturnVariable {
	return ReturnVariable{Kind: ReturnMutRefOwned, Address: address, ID: resourceID}
}

func RefBorrow(encoded string) ReturnVariable {
	return ReturnVariable{Kind: ReturnRefBorrow, Encoded: encoded}
}

func MutRefBorrow(encoded string) ReturnVariable {
	return ReturnVariable{Kind: ReturnMutRefBorrow, Encoded: encoded}
}

// InvokeOp declares how the caller wants the result of an Invoke treated.
type InvokeOp string

const (
	OpOwned  InvokeOp = "owned"
	OpRef    InvokeOp = "ref"
	OpMutRef InvokeOp = "mut_ref"
	OpInit   InvokeOp = "init"
)

// MessageKind tags the three message shapes UMI sends on the wire.
type MessageKind string

const (
	KindInvoke MessageKind = "invoke"
	KindReturn MessageKind = "return"
	KindDrop   MessageKind = "drop"
)

// Message is the single envelope type framed one-per-line by the codec.
type Message struct {
	Kind MessageKind `json:"kind"`

	// Invoke fields.
	Function string     `json:"function,omitempty"`
	Args     []Variable `json:"args,omitempty"`
	Op       InvokeOp   `json:"op,omitempty"`

	// Return field.
	Result *ReturnVariable `json:"result,omitempty"`

	// Drop field.
	DropID id.ID `json:"drop_id,omitempty"`
}

func Invoke(function string, args []Variable, op InvokeOp) Message {
	return Message{Kind: KindInvoke, Function: function, Args: args, Op: op}
}

func Return(result ReturnVariable) Message {
	return Message{Kind: KindReturn, Result: &result}
}

func Drop(resourceID id.ID) Message {
	return Message{Kind: KindDrop, DropID: resourceID}
}
