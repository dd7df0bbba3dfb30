package registry

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a live cluster, e.g. UFFI_ETCD_ENDPOINTS=127.0.0.1:2379.
func etcdRegistry(t *testing.T) *EtcdRegistry {
	t.Helper()
	endpoints := os.Getenv("UFFI_ETCD_ENDPOINTS")
	if endpoints == "" {
		t.Skip("UFFI_ETCD_ENDPOINTS not set")
	}
	prefix := "/uffi-test/" + strings.ReplaceAll(t.Name(), "/", "_")
	reg, err := NewEtcdRegistry(strings.Split(endpoints, ","), prefix, 5*time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestEtcdRegisterAndResolve(t *testing.T) {
	reg := etcdRegistry(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, reg.Register(ctx, Function{Name: "echo", Path: "/bin/echo_uffi"}, 10))
	require.NoError(t, reg.Register(ctx, Function{Name: "add", Path: "/bin/add_uffi"}, 0))

	f, err := reg.Resolve(ctx, "echo")
	require.NoError(t, err)
	assert.Equal(t, "/bin/echo_uffi", f.Path)

	list, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, reg.Deregister(ctx, "echo"))
	require.NoError(t, reg.Deregister(ctx, "add"))

	_, err = reg.Resolve(ctx, "echo")
	assert.ErrorIs(t, err, ErrNotFound)
}
