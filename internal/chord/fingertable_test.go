package chord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFingerTableInitialState(t *testing.T) {
	const selfID, m = uint64(8), uint(6)
	peer := NewHandleWithID(16, "127.0.0.1:4001")

	ft := NewFingerTable(selfID, peer, m)

	assert.Equal(t, int(m), ft.Len())
	for i := 0; i < ft.Len(); i++ {
		f := ft.At(i)
		assert.Equal(t, peer, f.Peer)
		assert.Equal(t, FingerStart(selfID, uint(i+1), m), f.Start)
	}
}

func TestFingerTableSetPeerLeavesStartUnchanged(t *testing.T) {
	ft := NewFingerTable(8, NewHandleWithID(16, "a"), 6)
	startBefore := ft.At(3).Start

	ft.SetPeer(3, NewHandleWithID(99, "b"))

	assert.Equal(t, startBefore, ft.At(3).Start)
	assert.Equal(t, uint64(99), ft.At(3).Peer.ID)
}

func TestFingerTableFillAll(t *testing.T) {
	ft := NewFingerTable(8, NewHandleWithID(16, "a"), 6)
	self := NewHandleWithID(8, "self")

	ft.FillAll(self)

	for _, f := range ft.Snapshot() {
		assert.Equal(t, self, f.Peer)
	}
}
