// Package endpoint implements the server-side dispatcher of spec.md
// §3/§4.G: it accepts one TCP connection per call (transport.Send's
// client half), materializes the call's Variables against the resource
// table, invokes the matched registry.Adapter, and shapes the reply.
package endpoint

import (
	"bufio"
	"fmt"
	"net"

	"github.com/golang/glog"
	"github.com/magnusmorton/experiment-umi/id"
	"github.com/magnusmorton/experiment-umi/registry"
	"github.com/magnusmorton/experiment-umi/resource"
	"github.com/magnusmorton/experiment-umi/wire"
)

// defaultWorkers is the size of the fixed worker pool spec.md §4.G calls
// for: enough to keep a handful of calls in flight without letting an
// unbounded number of goroutines pile up behind the table lock.
const defaultWorkers = 5

// Option configures an Endpoint at construction.
type Option func(*Endpoint)

// WithWorkers overrides the default worker pool size.
func WithWorkers(n int) Option {
	return func(e *Endpoint) { e.workers = n }
}

// Endpoint is one UMI server: a listener, a resource table, and a
// registry of callable functions, bound together by a fixed-size worker
// pool (spec.md §4.G).
type Endpoint struct {
	registry *registry.Registry
	table    *resource.Table
	ids      *id.Generator
	workers  int

	ln     net.Listener
	sem    chan struct{}
	closed chan struct{}
}

// New builds an Endpoint bound to reg and table but does not yet listen.
func New(reg *registry.Registry, table *resource.Table, opts ...Option) *Endpoint {
	e := &Endpoint{
		registry: reg,
		table:    table,
		ids:      id.NewGenerator(),
		workers:  defaultWorkers,
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sem = make(chan struct{}, e.workers)
	return e
}

// Addr returns the listener's bound address. Valid only after Start.
func (e *Endpoint) Addr() string {
	if e.ln == nil {
		return ""
	}
	return e.ln.Addr().String()
}

// Start binds bindAddr and spawns the accept loop in the background.
// Call Close to stop it.
func (e *Endpoint) Start(bindAddr string) error {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("endpoint: listen %s: %w", bindAddr, err)
	}
	e.ln = ln
	go e.acceptLoop()
	return nil
}

// Close stops accepting new connections. In-flight calls are allowed to
// finish; it does not forcibly cut their connections.
func (e *Endpoint) Close() error {
	close(e.closed)
	if e.ln != nil {
		return e.ln.Close()
	}
	return nil
}

// Dispatch runs req through the same decode -> materialize -> call ->
// encode pipeline as a TCP connection would, taking the table lock for
// the duration (spec.md §5). It is exported so an alternate transport —
// transport/ws's Handler, in particular — can drive the same dispatcher
// the TCP accept loop uses, without duplicating the worker-pool
// bookkeeping that's specific to net.Listener connections.
func (e *Endpoint) Dispatch(req wire.Message) wire.Message {
	return e.dispatch(req)
}

func (e *Endpoint) acceptLoop() {
	for {
		conn, err := e.ln.Accept()
		if err != nil {
			select {
			case <-e.closed:
				return
			default:
				glog.Warningf("endpoint: accept: %v", err)
				return
			}
		}
		e.sem <- struct{}{}
		go func() {
			defer func() { <-e.sem }()
			e.handleConn(conn)
		}()
	}
}

func (e *Endpoint) handleConn(conn net.Conn) {
	defer conn.Close()
	req, err := wire.ReadMessage(bufio.NewReader(conn))
	if err != nil {
		glog.Warningf("endpoint: read: %v", err)
		return
	}

	reply := e.dispatch(req)
	if err := wire.WriteMessage(conn, reply); err != nil {
		glog.Warningf("endpoint: write reply: %v", err)
	}
}

// dispatch holds the table lock for the full request (spec.md §5) and
// routes by message kind.
func (e *Endpoint) dispatch(req wire.Message) wire.Message {
	e.table.Lock()
	defer e.table.Unlock()

	switch req.Kind {
	case wire.KindInvoke:
		return e.dispatchInvoke(req)
	case wire.KindDrop:
		e.table.Remove(req.DropID)
		return wire.Return(wire.Owned("null"))
	default:
		return errorReturn(fmt.Errorf("endpoint: unexpected message kind %q", req.Kind))
	}
}

func (e *Endpoint) dispatchInvoke(req wire.Message) wire.Message {
	adapter, ok := e.registry.Lookup(req.Function)
	if !ok {
		return errorReturn(fmt.Errorf("endpoint: unknown function %q", req.Function))
	}

	args, releases, err := e.materialize(req.Args)
	defer releaseAll(releases)
	if err != nil {
		return errorReturn(err)
	}

	encoded, isLocal, boxed, err := adapter.Call(args)
	if err != nil {
		return errorReturn(err)
	}

	return wire.Return(e.shapeReturn(req.Op, encoded, isLocal, boxed))
}

// materialize turns each wire.Variable into the registry.WireArg the
// adapter expects, per the table in spec.md §4.G: OwnedLocal decodes
// straight through; OwnedRemote takes the resource out of the table
// (it's coming home); RefRemote/MutRefRemote borrow it in place. A
// Remote variable whose address is not this endpoint's is passed on as
// its encoded handle (Serialised/RemoteRef/RemoteMutRef) instead.
func (e *Endpoint) materialize(vars []wire.Variable) ([]registry.WireArg, []func(), error) {
	args := make([]registry.WireArg, len(vars))
	var releases []func()
	for i, v := range vars {
		foreign := v.Kind != wire.KindOwnedLocal && v.Address != e.Addr()
		switch v.Kind {
		case wire.KindOwnedLocal:
			args[i] = registry.Serialised(v.Encoded)
		case wire.KindOwnedRemote:
			if foreign {
				args[i] = registry.Serialised(v.Encoded)
				continue
			}
			obj, _, err := e.table.Take(v.ID)
			if err != nil {
				return nil, releases, fmt.Errorf("endpoint: arg %d: %w", i, err)
			}
			args[i] = registry.Owned(obj)
		case wire.KindRefRemote:
			if foreign {
				args[i] = registry.RemoteRef(v.Encoded)
				continue
			}
			obj, isRef, release, err := e.table.Borrow(v.ID)
			if err != nil {
				return nil, releases, fmt.Errorf("endpoint: arg %d: %w", i, err)
			}
			releases = append(releases, release)
			args[i] = registry.Ref(obj, isRef)
		case wire.KindMutRefRemote:
			if foreign {
				args[i] = registry.RemoteMutRef(v.Encoded)
				continue
			}
			obj, isRef, release, err := e.table.BorrowMut(v.ID)
			if err != nil {
				return nil, releases, fmt.Errorf("endpoint: arg %d: %w", i, err)
			}
			releases = append(releases, release)
			args[i] = registry.MutRef(obj, isRef)
		default:
			return nil, releases, fmt.Errorf("endpoint: arg %d: unknown variable kind %q", i, v.Kind)
		}
	}
	return args, releases, nil
}

func releaseAll(releases []func()) {
	for _, release := range releases {
		release()
	}
}

// shapeReturn implements the InvokeOp × isLocal table of spec.md §4.G:
// one response shape for each of Init and Owned, and two each for Ref and
// MutRef depending on whether the result is a plain value or a proxy
// that's already local to this endpoint.
func (e *Endpoint) shapeReturn(op wire.InvokeOp, encoded string, isLocal bool, boxed interface{}) wire.ReturnVariable {
	switch op {
	case wire.OpInit:
		resourceID := e.ids.Next()
		e.table.Insert(resourceID, boxed, false)
		return wire.OwnedInit(e.Addr(), resourceID, true)
	case wire.OpOwned:
		return wire.Owned(encoded)
	case wire.OpRef:
		resourceID := e.ids.Next()
		if isLocal {
			e.table.Insert(resourceID, boxed, true)
			return wire.RefOwned(e.Addr(), resourceID)
		}
		return wire.RefBorrow(encoded)
	case wire.OpMutRef:
		resourceID := e.ids.Next()
		if isLocal {
			e.table.Insert(resourceID, boxed, true)
			return wire.MutRefOwned(e.Addr(), resourceID)
		}
		return wire.MutRefBorrow(encoded)
	default:
		return wire.Owned(encoded)
	}
}

// errorReturn reports a dispatch failure back to the caller as an Owned
// Return carrying the error text, rather than a distinct wire shape: per
// spec.md §7 these are caller-visible errors (unknown function, borrow
// conflict, bad argument), not transport failures, so the existing Owned
// channel is sufficient and keeps the wire vocabulary small.
func errorReturn(err error) wire.Message {
	glog.Warningf("endpoint: %v", err)
	encoded, _ := wire.EncodeValue(err.Error())
	return wire.Return(wire.Owned(encoded))
}
