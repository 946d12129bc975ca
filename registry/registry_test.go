package registry_test

import (
	"testing"

	"github.com/magnusmorton/experiment-umi/registry"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

func newCounter() *counter { return &counter{} }

func (c *counter) Add(delta int) int {
	c.n += delta
	return c.n
}

func (c *counter) Peek() int { return c.n }

func (c *counter) Ref() *int { return &c.n }

func TestRegisterAndCallByValue(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.New", newCounter, registry.ResultOwned))

	adapter, ok := reg.Lookup("counter.New")
	require.True(t, ok)

	encoded, isLocal, boxed, err := adapter.Call(nil)
	require.NoError(t, err)
	require.True(t, isLocal)
	require.NotEmpty(t, encoded)
	c, ok := boxed.(*counter)
	require.True(t, ok)
	require.Equal(t, 0, c.n)
}

func TestRegisterAndCallWithRefReceiver(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.Add", (*counter).Add, registry.ResultOwned))
	adapter, _ := reg.Lookup("counter.Add")

	c := newCounter()
	encoded, isLocal, _, err := adapter.Call([]registry.WireArg{
		registry.MutRef(c, false),
		registry.Serialised("5"),
	})
	require.NoError(t, err)
	require.True(t, isLocal)
	require.Equal(t, "5", encoded)
	require.Equal(t, 5, c.n)
}

func TestRegisterAndCallReturnsRef(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.Ref", (*counter).Ref, registry.ResultRef))
	adapter, _ := reg.Lookup("counter.Ref")

	c := &counter{n: 42}
	_, isLocal, boxed, err := adapter.Call([]registry.WireArg{registry.Ref(c, false)})
	require.NoError(t, err)
	require.True(t, isLocal)
	ptr, ok := boxed.(*int)
	require.True(t, ok)
	require.Equal(t, 42, *ptr)
}

func TestCallWrongArgCount(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.Add", (*counter).Add, registry.ResultOwned))
	adapter, _ := reg.Lookup("counter.Add")

	_, _, _, err := adapter.Call([]registry.WireArg{registry.MutRef(newCounter(), false)})
	require.ErrorIs(t, err, registry.ErrArgCount)
}

func TestCallWrongTypeErrors(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.Add", (*counter).Add, registry.ResultOwned))
	adapter, _ := reg.Lookup("counter.Add")

	_, _, _, err := adapter.Call([]registry.WireArg{
		registry.MutRef("not-a-counter", false),
		registry.Serialised("1"),
	})
	require.Error(t, err)
}

type divider struct{}

func (divider) Divide(a, b int) int { return a / b }

func TestCallInvocationPanicBecomesError(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("divider.Divide", divider{}.Divide, registry.ResultOwned))
	adapter, _ := reg.Lookup("divider.Divide")

	_, _, _, err := adapter.Call([]registry.WireArg{
		registry.Serialised("1"),
		registry.Serialised("0"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "panicked")
}

func TestRegisterDuplicateNameErrors(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.New", newCounter, registry.ResultOwned))
	err := reg.Register("counter.New", newCounter, registry.ResultOwned)
	require.Error(t, err)
}

func TestLookupIdempotent(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.New", newCounter, registry.ResultOwned))
	a1, _ := reg.Lookup("counter.New")
	a2, _ := reg.Lookup("counter.New")
	require.Same(t, a1, a2)
}

func TestSerialisedArgDecodesJSON(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("counter.Add", (*counter).Add, registry.ResultOwned))
	adapter, _ := reg.Lookup("counter.Add")
	c := newCounter()
	encoded, _, _, err := adapter.Call([]registry.WireArg{
		registry.MutRef(c, false),
		registry.Serialised("7"),
	})
	require.NoError(t, err)
	require.Equal(t, "7", encoded)
}
