package wire_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/magnusmorton/experiment-umi/id"
	"github.com/magnusmorton/experiment-umi/wire"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	cases := []wire.Message{
		wire.Invoke("StudentRecord.Add", []wire.Variable{wire.OwnedLocal(`"Jane Doe"`)}, wire.OpOwned),
		wire.Return(wire.Owned(`"null"`)),
		wire.Return(wire.OwnedInit("127.0.0.1:3334", id.ID{Counter: 1}, true)),
		wire.Drop(id.ID{Counter: 7}),
	}
	var buf bytes.Buffer
	for _, m := range cases {
		require.NoError(t, wire.WriteMessage(&buf, m))
	}
	r := bufio.NewReader(&buf)
	for _, want := range cases {
		got, err := wire.ReadMessage(r)
		require.NoError(t, err)
		require.Equal(t, want.Kind, got.Kind)
		require.Equal(t, want.Function, got.Function)
		require.Equal(t, want.DropID, got.DropID)
	}
}

func TestReadMessageRejectsMalformedLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("{not json\n"))
	_, err := wire.ReadMessage(r)
	require.ErrorIs(t, err, wire.ErrMalformed)
}

func TestReadMessageRejectsUnknownKind(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(`{"kind":"teleport"}` + "\n"))
	_, err := wire.ReadMessage(r)
	require.ErrorIs(t, err, wire.ErrMalformed)
}

func TestOneLinePerMessageFraming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.WriteMessage(&buf, wire.Drop(id.ID{Counter: 1})))
	require.NoError(t, wire.WriteMessage(&buf, wire.Drop(id.ID{Counter: 2})))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
}

func TestValueRoundTrip(t *testing.T) {
	encoded, err := wire.EncodeValue([]string{"Jane", "John"})
	require.NoError(t, err)
	got, err := wire.DecodeValue[[]string](encoded)
	require.NoError(t, err)
	require.Equal(t, []string{"Jane", "John"}, got)
}
