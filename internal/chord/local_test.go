package chord

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRegistryTwoNodeRing(t *testing.T) {
	registry := NewLocalRegistry()

	a := New("nodeA", WithDialer(registry), WithFingerCount(8))
	a.store = NewNodeStore(NewHandleWithID(8, "nodeA"), 8, 3)
	b := New("nodeB", WithDialer(registry), WithFingerCount(8))
	b.store = NewNodeStore(NewHandleWithID(16, "nodeB"), 8, 3)

	registry.Register(a)
	registry.Register(b)

	err := a.Join(context.Background(), NewHandleWithID(16, "nodeB"))
	require.NoError(t, err)
	assert.Equal(t, uint64(16), a.Successor().ID)

	err = a.Stabilize(context.Background())
	require.NoError(t, err)

	pred, ok := b.Predecessor()
	require.True(t, ok)
	assert.Equal(t, uint64(8), pred.ID)
}

func TestLocalRegistryDialUnregisteredIsConnectionFailed(t *testing.T) {
	registry := NewLocalRegistry()

	_, err := registry.Dial("ghost")

	assert.True(t, IsConnectionFailed(err))
}

func TestLocalRegistryUnregisterMakesPeerUnpingable(t *testing.T) {
	registry := NewLocalRegistry()
	a := New("nodeA", WithDialer(registry))
	registry.Register(a)

	client, err := registry.Dial("nodeA")
	require.NoError(t, err)
	require.NoError(t, client.Ping(context.Background()))

	registry.Unregister("nodeA")

	assert.True(t, IsConnectionFailed(client.Ping(context.Background())))
}
