package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/magnusmorton/experiment-umi/wire"
)

// ResultOp describes how a registered function's return value should be
// treated: passed by value, or boxed as a shared/exclusive reference
// (spec.md §3, §6). Init is not a registration-time op — it is the
// InvokeOp an Invoke carries at call time for a constructor, layered on
// top of a function registered with ResultOwned (spec.md §6).
type ResultOp string

const (
	ResultOwned  ResultOp = "owned"
	ResultRef    ResultOp = "ref"
	ResultMutRef ResultOp = "mut_ref"
)

// ErrArgCount is returned when the number of wire arguments does not
// match the registered function's arity. Per spec.md §7 this is a
// registry/stub-generation bug, not a transport error.
var ErrArgCount = errors.New("registry: wrong number of arguments")

// Adapter is the registry entry contract of spec.md §4.F: given the
// decoded wire arguments for one invocation, it invokes the underlying
// function and returns both the wire encoding of the result and its
// type-erased boxed form.
type Adapter interface {
	// Call decodes args into the underlying function's parameters,
	// invokes it, and returns the tagged-string encoding of the result,
	// whether that result is a Local proxy value (or any non-proxy
	// value), and a boxed form suitable for storing in a resource.Table.
	Call(args []WireArg) (encoded string, isLocal bool, boxed interface{}, err error)
}

type funcAdapter struct {
	name     string
	fn       reflect.Value
	in       []reflect.Type
	resultOp ResultOp
}

// newFuncAdapter builds an Adapter around fn using reflection, the way
// v.io/v23/rpc's reflectInvoker builds a dispatch table around a Go
// method set: fn's parameter types declare, positionally, whether that
// argument is expected by value (plain type) or by reference (pointer
// type) — the same contract a generated stub honors when it chooses
// OwnedLocal vs RefRemote/MutRefRemote for that position (spec.md §4.H).
func newFuncAdapter(name string, fn interface{}, op ResultOp) (*funcAdapter, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("registry: %s: not a function", name)
	}
	t := rv.Type()
	if t.NumOut() != 1 {
		return nil, fmt.Errorf("registry: %s: must return exactly one value, got %d", name, t.NumOut())
	}
	in := make([]reflect.Type, t.NumIn())
	for i := range in {
		in[i] = t.In(i)
	}
	return &funcAdapter{name: name, fn: rv, in: in, resultOp: op}, nil
}

func (a *funcAdapter) Call(args []WireArg) (encoded string, isLocal bool, boxed interface{}, err error) {
	if len(args) != len(a.in) {
		return "", false, nil, fmt.Errorf("%w: %s got %d args, want %d", ErrArgCount, a.name, len(args), len(a.in))
	}
	rargs := make([]reflect.Value, len(args))
	for i, want := range a.in {
		v, err := decodeArg(args[i], want)
		if err != nil {
			return "", false, nil, fmt.Errorf("registry: %s: arg %d: %w", a.name, i, err)
		}
		rargs[i] = v
	}

	results, err := a.invoke(rargs)
	if err != nil {
		return "", false, nil, err
	}
	result := results[0]

	encoded, isLocal = tagValue(result.Interface())
	boxed = boxResult(result, a.resultOp)
	return encoded, isLocal, boxed, nil
}

// invoke calls the underlying function, converting a reflect panic (a
// type mismatch between what a stub declared and what actually arrived)
// into an error scoped to this one request rather than crashing the
// whole endpoint — the spirit of "abort loudly" in spec.md §7 without
// taking every other in-flight call down with it.
func (a *funcAdapter) invoke(rargs []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("registry: %s: invocation panicked: %v", a.name, r)
		}
	}()
	results = a.fn.Call(rargs)
	return results, nil
}

func decodeArg(w WireArg, want reflect.Type) (reflect.Value, error) {
	switch w.Kind {
	case ArgSerialised:
		return decodeJSON(w.Serialised, want)
	case ArgOwned, ArgRef, ArgMutRef:
		return adaptValue(reflect.ValueOf(w.Object), want)
	case ArgRemoteRef, ArgRemoteMutRef:
		if want.Kind() != reflect.Ptr {
			return reflect.Value{}, fmt.Errorf("remote borrow argument must be a pointer type, got %s", want)
		}
		v, err := decodeJSON(w.Serialised, want)
		if err != nil {
			return reflect.Value{}, err
		}
		if b, ok := v.Interface().(Borrower); ok {
			b.MarkBorrowed()
		}
		return v, nil
	default:
		return reflect.Value{}, fmt.Errorf("unknown arg kind %q", w.Kind)
	}
}

func decodeJSON(encoded string, want reflect.Type) (reflect.Value, error) {
	target := want
	isPtr := want.Kind() == reflect.Ptr
	if isPtr {
		target = want.Elem()
	}
	nv := reflect.New(target)
	if err := json.Unmarshal([]byte(encoded), nv.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("decoding %s: %w", want, err)
	}
	if isPtr {
		return nv, nil
	}
	return nv.Elem(), nil
}

// adaptValue reconciles a stored table value (always a concrete Go value
// obtained from a resource.Table or registry.Call) with the static type a
// registered function expects at that position, which per spec.md §4.F
// may be the resource's value type or a pointer to it.
func adaptValue(rv reflect.Value, want reflect.Type) (reflect.Value, error) {
	if !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("nil table value, want %s", want)
	}
	if rv.Type() == want || rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if rv.Kind() == reflect.Ptr && rv.Type().Elem() == want {
		return rv.Elem(), nil
	}
	if want.Kind() == reflect.Ptr && rv.Type() == want.Elem() {
		nv := reflect.New(want.Elem())
		nv.Elem().Set(rv)
		return nv, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot adapt %s to %s", rv.Type(), want)
}

// tagValue implements the "tagged string" operation of spec.md §4.F:
// proxy types that know whether they're Local or Remote report it
// themselves; everything else is, by definition, always local.
func tagValue(v interface{}) (encoded string, isLocal bool) {
	if t, ok := v.(LocalityTagger); ok {
		return t.TaggedString()
	}
	s, err := wire.EncodeValue(v)
	if err != nil {
		return "", true
	}
	return s, true
}

// boxResult produces the type-erased form of a result suitable for
// resource.Table storage. Reference results are boxed as a pointer to the
// value (Go's native equivalent of the reference implementation's
// ConstPtr/MutPtr wrapper, see DESIGN.md); owned results are boxed as-is.
func boxResult(rv reflect.Value, op ResultOp) interface{} {
	if op == ResultOwned {
		return rv.Interface()
	}
	if rv.Kind() == reflect.Ptr {
		return rv.Interface()
	}
	nv := reflect.New(rv.Type())
	nv.Elem().Set(rv)
	return nv.Interface()
}
