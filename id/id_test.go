package id_test

import (
	"encoding/json"
	"testing"

	"github.com/magnusmorton/experiment-umi/id"
	"github.com/stretchr/testify/require"
)

func TestGeneratorMonotonic(t *testing.T) {
	g := id.NewGenerator()
	a := g.Next()
	b := g.Next()
	require.NotEqual(t, a, b)
	require.Less(t, a.Counter, b.Counter)
}

func TestGeneratorConcurrent(t *testing.T) {
	g := id.NewGenerator()
	const n = 200
	seen := make(chan id.ID, n)
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			seen <- g.Next()
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	close(seen)
	unique := map[uint64]bool{}
	for x := range seen {
		require.False(t, unique[x.Counter], "counter %d reused", x.Counter)
		unique[x.Counter] = true
	}
	require.Len(t, unique, n)
}

func TestIDRoundTrip(t *testing.T) {
	g := id.NewGenerator()
	want := g.Next()
	b, err := json.Marshal(want)
	require.NoError(t, err)
	var got id.ID
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, want.Counter, got.Counter)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
}
