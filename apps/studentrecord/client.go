package studentrecord

import (
	"fmt"

	"github.com/magnusmorton/experiment-umi/proxy"
	"github.com/magnusmorton/experiment-umi/wire"
)

// Proxy is the Remote half of StudentRecord: a handle to a roster living
// on another endpoint, with every method round-tripping over the wire
// instead of touching a local slice (spec.md §4.H).
type Proxy struct {
	*proxy.Remote
}

// NewRemote constructs a fresh roster on address and returns an owning
// Proxy to it — the client-side analogue of New, reached through
// proxy.Init's OwnedInit Return.
func NewRemote(address string) (*Proxy, error) {
	r, err := proxy.Init(address, "studentrecord.New", nil)
	if err != nil {
		return nil, err
	}
	return &Proxy{r}, nil
}

// AddStudent appends student on the remote roster, mutating it through
// an exclusive borrow of the underlying resource.
func (p *Proxy) AddStudent(student string) (int, error) {
	encoded, err := wire.EncodeValue(student)
	if err != nil {
		return 0, err
	}
	result, err := proxy.Call(p.Address, "studentrecord.AddStudent", []wire.Variable{
		p.AsArgument(false, true),
		wire.OwnedLocal(encoded),
	}, wire.OpOwned)
	if err != nil {
		return 0, err
	}
	return wire.DecodeValue[int](result.Encoded)
}

// HasStudent queries the remote roster through a shared borrow.
func (p *Proxy) HasStudent(student string) (bool, error) {
	encoded, err := wire.EncodeValue(student)
	if err != nil {
		return false, err
	}
	result, err := proxy.Call(p.Address, "studentrecord.HasStudent", []wire.Variable{
		p.AsArgument(false, false),
		wire.OwnedLocal(encoded),
	}, wire.OpOwned)
	if err != nil {
		return false, err
	}
	return wire.DecodeValue[bool](result.Encoded)
}

// FirstStudent fetches a reference to the roster's first entry. The
// returned StudentRef is a live proxy, not a copy of the name: a
// concurrent RenameFirst elsewhere is visible through it.
func (p *Proxy) FirstStudent() (*StudentRef, error) {
	result, err := proxy.Call(p.Address, "studentrecord.FirstStudent", []wire.Variable{
		p.AsArgument(false, false),
	}, wire.OpRef)
	if err != nil {
		return nil, err
	}
	return newStudentRef(result, false)
}

// RenameFirst overwrites the roster's first entry and returns an
// exclusive reference to the renamed slot.
func (p *Proxy) RenameFirst(newName string) (*StudentRef, error) {
	encoded, err := wire.EncodeValue(newName)
	if err != nil {
		return nil, err
	}
	result, err := proxy.Call(p.Address, "studentrecord.RenameFirst", []wire.Variable{
		p.AsArgument(false, true),
		wire.OwnedLocal(encoded),
	}, wire.OpMutRef)
	if err != nil {
		return nil, err
	}
	return newStudentRef(result, true)
}

// StudentRef is a proxy to a single student name living inside someone
// else's roster — the handle FirstStudent/RenameFirst return.
type StudentRef struct {
	*proxy.Remote
	exclusive bool
}

func newStudentRef(result wire.ReturnVariable, exclusive bool) (*StudentRef, error) {
	switch result.Kind {
	case wire.ReturnRefOwned, wire.ReturnMutRefOwned:
		ref := proxy.NewOwning(result.Address, result.ID)
		proxy.Default.Append(ref)
		return &StudentRef{Remote: ref, exclusive: exclusive}, nil
	case wire.ReturnRefBorrow, wire.ReturnMutRefBorrow:
		// The roster's first entry is always a plain string living on the
		// endpoint that hosts the roster itself; studentrecord never
		// returns a reference that already lives on a third endpoint, so
		// this shape never arises in practice for this app.
		return nil, fmt.Errorf("studentrecord: unexpected already-remote reference %s", result.Kind)
	default:
		return nil, fmt.Errorf("studentrecord: unexpected return kind %s", result.Kind)
	}
}

// Value reads the current student name through this reference.
func (r *StudentRef) Value() (string, error) {
	result, err := proxy.Call(r.Address, "studentrecord.ReadStudentRef", []wire.Variable{
		r.AsArgument(false, false),
	}, wire.OpOwned)
	if err != nil {
		return "", err
	}
	return wire.DecodeValue[string](result.Encoded)
}

// Set overwrites the student name through this reference; it requires an
// exclusive reference obtained from RenameFirst.
func (r *StudentRef) Set(newName string) (string, error) {
	if !r.exclusive {
		return "", fmt.Errorf("studentrecord: Set needs an exclusive reference from RenameFirst")
	}
	encoded, err := wire.EncodeValue(newName)
	if err != nil {
		return "", err
	}
	result, err := proxy.Call(r.Address, "studentrecord.WriteStudentRef", []wire.Variable{
		r.AsArgument(false, true),
		wire.OwnedLocal(encoded),
	}, wire.OpOwned)
	if err != nil {
		return "", err
	}
	return wire.DecodeValue[string](result.Encoded)
}
