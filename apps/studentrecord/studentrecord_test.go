package studentrecord_test

import (
	"testing"

	"github.com/magnusmorton/experiment-umi/apps/studentrecord"
	"github.com/magnusmorton/experiment-umi/endpoint"
	"github.com/magnusmorton/experiment-umi/registry"
	"github.com/magnusmorton/experiment-umi/resource"
	"github.com/stretchr/testify/require"
)

func TestLocalRoster(t *testing.T) {
	r := studentrecord.New()
	require.Equal(t, 1, r.AddStudent("Jane"))
	require.True(t, r.HasStudent("Jane"))
	require.False(t, r.HasStudent("John"))
	require.Equal(t, "Jane", *r.FirstStudent())
}

func startServer(t *testing.T) string {
	t.Helper()
	reg := registry.New()
	require.NoError(t, studentrecord.Register(reg))
	ep := endpoint.New(reg, resource.New())
	require.NoError(t, ep.Start("127.0.0.1:0"))
	t.Cleanup(func() { ep.Close() })
	return ep.Addr()
}

func TestRemoteRosterEndToEnd(t *testing.T) {
	addr := startServer(t)

	roster, err := studentrecord.NewRemote(addr)
	require.NoError(t, err)
	require.True(t, roster.IsOwner())

	n, err := roster.AddStudent("Jane")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	has, err := roster.HasStudent("Jane")
	require.NoError(t, err)
	require.True(t, has)

	has, err = roster.HasStudent("John")
	require.NoError(t, err)
	require.False(t, has)
}

func TestRemoteFirstStudentRefReflectsLiveState(t *testing.T) {
	addr := startServer(t)
	roster, err := studentrecord.NewRemote(addr)
	require.NoError(t, err)

	_, err = roster.AddStudent("Jane")
	require.NoError(t, err)

	ref, err := roster.FirstStudent()
	require.NoError(t, err)
	name, err := ref.Value()
	require.NoError(t, err)
	require.Equal(t, "Jane", name)

	renamed, err := roster.RenameFirst("Janet")
	require.NoError(t, err)
	newName, err := renamed.Value()
	require.NoError(t, err)
	require.Equal(t, "Janet", newName)

	again, err := ref.Value()
	require.NoError(t, err)
	require.Equal(t, "Janet", again)
}

func TestRemoteCloseDropsRoster(t *testing.T) {
	addr := startServer(t)
	roster, err := studentrecord.NewRemote(addr)
	require.NoError(t, err)
	roster.Close()
	require.False(t, roster.IsOwner())

	_, err = roster.HasStudent("Jane")
	require.Error(t, err)
}
