package endpoint_test

import (
	"testing"

	"github.com/magnusmorton/experiment-umi/endpoint"
	"github.com/magnusmorton/experiment-umi/registry"
	"github.com/magnusmorton/experiment-umi/resource"
	"github.com/magnusmorton/experiment-umi/transport"
	"github.com/magnusmorton/experiment-umi/wire"
	"github.com/stretchr/testify/require"
)

type box struct {
	n int
}

func newBox() *box { return &box{} }

func (b *box) Set(n int) int { b.n = n; return b.n }
func (b *box) Get() int      { return b.n }
func (b *box) Ref() *int     { return &b.n }

func startEndpoint(t *testing.T, reg *registry.Registry) (*endpoint.Endpoint, func()) {
	t.Helper()
	table := resource.New()
	ep := endpoint.New(reg, table)
	require.NoError(t, ep.Start("127.0.0.1:0"))
	return ep, func() { ep.Close() }
}

func TestConstructMutateQuery(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("box.New", newBox, registry.ResultOwned))
	require.NoError(t, reg.Register("box.Set", (*box).Set, registry.ResultOwned))
	require.NoError(t, reg.Register("box.Get", (*box).Get, registry.ResultOwned))
	ep, stop := startEndpoint(t, reg)
	defer stop()

	initReply, err := send(ep.Addr(), wire.Invoke("box.New", nil, wire.OpInit))
	require.NoError(t, err)
	require.Equal(t, wire.ReturnOwnedInit, initReply.Result.Kind)
	boxID := initReply.Result.ID
	require.True(t, initReply.Result.IsOwner)

	setReply, err := send(ep.Addr(), wire.Invoke("box.Set", []wire.Variable{
		wire.MutRefRemote("", ep.Addr(), boxID),
		wire.OwnedLocal("7"),
	}, wire.OpOwned))
	require.NoError(t, err)
	require.Equal(t, wire.ReturnOwned, setReply.Result.Kind)

	getReply, err := send(ep.Addr(), wire.Invoke("box.Get", []wire.Variable{
		wire.RefRemote("", ep.Addr(), boxID),
	}, wire.OpOwned))
	require.NoError(t, err)
	require.Equal(t, "7", getReply.Result.Encoded)
}

func TestRefReturnYieldsRefOwned(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("box.New", newBox, registry.ResultOwned))
	require.NoError(t, reg.Register("box.Ref", (*box).Ref, registry.ResultRef))
	ep, stop := startEndpoint(t, reg)
	defer stop()

	initReply, err := send(ep.Addr(), wire.Invoke("box.New", nil, wire.OpInit))
	require.NoError(t, err)
	boxID := initReply.Result.ID

	refReply, err := send(ep.Addr(), wire.Invoke("box.Ref", []wire.Variable{
		wire.MutRefRemote("", ep.Addr(), boxID),
	}, wire.OpRef))
	require.NoError(t, err)
	require.Equal(t, wire.ReturnRefOwned, refReply.Result.Kind)
	require.NotEqual(t, boxID, refReply.Result.ID)
}

func TestDropRemovesResource(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("box.New", newBox, registry.ResultOwned))
	require.NoError(t, reg.Register("box.Get", (*box).Get, registry.ResultOwned))
	ep, stop := startEndpoint(t, reg)
	defer stop()

	initReply, err := send(ep.Addr(), wire.Invoke("box.New", nil, wire.OpInit))
	require.NoError(t, err)
	boxID := initReply.Result.ID

	_, err = send(ep.Addr(), wire.Drop(boxID))
	require.NoError(t, err)

	reply, err := send(ep.Addr(), wire.Invoke("box.Get", []wire.Variable{
		wire.RefRemote("", ep.Addr(), boxID),
	}, wire.OpOwned))
	require.NoError(t, err) // the endpoint replies with an error-shaped Owned Return, not a transport error
	require.Contains(t, reply.Result.Encoded, "no such id")
}

func TestUnknownFunctionReturnsError(t *testing.T) {
	reg := registry.New()
	ep, stop := startEndpoint(t, reg)
	defer stop()

	reply, err := send(ep.Addr(), wire.Invoke("nope", nil, wire.OpOwned))
	require.NoError(t, err)
	require.Contains(t, reply.Result.Encoded, "unknown function")
}

func TestConcurrentClients(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("box.New", newBox, registry.ResultOwned))
	require.NoError(t, reg.Register("box.Set", (*box).Set, registry.ResultOwned))
	ep, stop := startEndpoint(t, reg)
	defer stop()

	initReply, err := send(ep.Addr(), wire.Invoke("box.New", nil, wire.OpInit))
	require.NoError(t, err)
	boxID := initReply.Result.ID

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := send(ep.Addr(), wire.Invoke("box.Set", []wire.Variable{
				wire.MutRefRemote("", ep.Addr(), boxID),
				wire.OwnedLocal("1"),
			}, wire.OpOwned))
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
}

func TestExclusiveBorrowConflictWithinOneRequestIsNotPossible(t *testing.T) {
	// A single Invoke's arguments are materialized sequentially under the
	// table lock, so two MutRef args on the same id in the same call
	// surface as a borrow conflict rather than deadlocking.
	reg := registry.New()
	require.NoError(t, reg.Register("box.New", newBox, registry.ResultOwned))
	require.NoError(t, reg.Register("box.both", func(a, b *box) int { return a.n + b.n }, registry.ResultOwned))
	ep, stop := startEndpoint(t, reg)
	defer stop()

	initReply, err := send(ep.Addr(), wire.Invoke("box.New", nil, wire.OpInit))
	require.NoError(t, err)
	boxID := initReply.Result.ID

	reply, err := send(ep.Addr(), wire.Invoke("box.both", []wire.Variable{
		wire.MutRefRemote("", ep.Addr(), boxID),
		wire.MutRefRemote("", ep.Addr(), boxID),
	}, wire.OpOwned))
	require.NoError(t, err)
	require.Contains(t, reply.Result.Encoded, "borrow conflict")
}

func send(addr string, msg wire.Message) (wire.Message, error) {
	return transport.Send(addr, msg)
}
