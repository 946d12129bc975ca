package proxy

import (
	"fmt"

	"github.com/magnusmorton/experiment-umi/transport"
	"github.com/magnusmorton/experiment-umi/wire"
)

// Init sends an Invoke with InvokeOp Init — the client helper of spec.md
// §6 (the Go analogue of the reference implementation's remote! macro): it
// names a registered constructor, waits for the OwnedInit Return, and
// hands back an owning Remote to the fresh resource. Every generated
// app-level remote constructor (e.g. studentrecord.NewRemote) is a thin wrapper around
// this that also stamps the app's own proxy type around the Remote.
func Init(address, function string, args []wire.Variable) (*Remote, error) {
	reply, err := transport.Send(address, wire.Invoke(function, args, wire.OpInit))
	if err != nil {
		return nil, err
	}
	result, err := expectReturn(reply)
	if err != nil {
		return nil, err
	}
	if result.Kind != wire.ReturnOwnedInit {
		return nil, fmt.Errorf("proxy: Init(%s): want %s, got %s", function, wire.ReturnOwnedInit, result.Kind)
	}
	if result.IsOwner {
		return NewOwning(result.Address, result.ID), nil
	}
	return NewBorrowing(result.Address, result.ID), nil
}

// Call sends a plain Invoke (op Owned, Ref, or MutRef) and returns the raw
// ReturnVariable for the app stub to interpret — stubs differ in how they
// turn a given ReturnKind into their own Local/Remote dichotomy, so Call
// stops at the wire boundary rather than guessing.
func Call(address, function string, args []wire.Variable, op wire.InvokeOp) (wire.ReturnVariable, error) {
	reply, err := transport.Send(address, wire.Invoke(function, args, op))
	if err != nil {
		return wire.ReturnVariable{}, err
	}
	result, err := expectReturn(reply)
	if err != nil {
		return wire.ReturnVariable{}, err
	}
	return *result, nil
}

func expectReturn(reply wire.Message) (*wire.ReturnVariable, error) {
	if reply.Kind != wire.KindReturn || reply.Result == nil {
		return nil, fmt.Errorf("proxy: expected a return message, got kind %q", reply.Kind)
	}
	return reply.Result, nil
}

// AsArgument converts r into the Variable a stub should embed in an
// outgoing Invoke, according to how the argument is being passed:
//   - move (byMove=true): an OwnedRemote carrying r's id, after clearing
//     r's own owner flag (invariant 1 in spec.md §3) — the generated stub
//     must not use r again afterwards.
//   - shared/exclusive borrow (byMove=false): a RefRemote/MutRefRemote,
//     which never touches r's owner flag.
//
// The encoded_handle carried alongside address+id is r.Encode()'s JSON
// form, not r.String()'s debug text — a nested call that forwards this
// Variable on to a third endpoint (spec.md §4.G, addr != A) decodes it
// with proxy.DecodeHandle/registry's RemoteRef path, which requires valid
// JSON (spec.md §8 property 1, round-trip).
func (r *Remote) AsArgument(byMove, exclusive bool) wire.Variable {
	if byMove {
		r.TransferOwnership()
		return wire.OwnedRemote(r.Encode(), r.Address, r.ID)
	}
	if exclusive {
		return wire.MutRefRemote(r.Encode(), r.Address, r.ID)
	}
	return wire.RefRemote(r.Encode(), r.Address, r.ID)
}
