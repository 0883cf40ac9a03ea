package chord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeStoreAloneOnRing(t *testing.T) {
	self := NewHandleWithID(8, "self")
	s := NewNodeStore(self, 6, 3)

	assert.Equal(t, self, s.Self())
	assert.Equal(t, self, s.Successor())
	_, ok := s.Predecessor()
	assert.False(t, ok)

	for _, f := range s.Fingers() {
		assert.Equal(t, self, f.Peer)
	}
	for _, h := range s.SuccessorList() {
		assert.Equal(t, self, h)
	}
}

func TestNodeStoreSetSuccessorUpdatesFingerZeroAndList(t *testing.T) {
	s := NewNodeStore(NewHandleWithID(8, "self"), 6, 3)
	peer := NewHandleWithID(16, "peer")

	s.SetSuccessor(peer)

	assert.Equal(t, peer, s.Successor())
	assert.Equal(t, peer, s.Finger(0).Peer)
	assert.Equal(t, peer, s.SuccessorList()[0])
}

func TestNodeStoreSetSuccessorListPadsWithLastEntry(t *testing.T) {
	s := NewNodeStore(NewHandleWithID(8, "self"), 6, 3)
	only := NewHandleWithID(16, "only")

	s.SetSuccessorList([]NodeHandle{only})

	list := s.SuccessorList()
	require.Len(t, list, 3)
	for _, h := range list {
		assert.Equal(t, only, h)
	}
}

func TestNodeStorePredecessorSetUnset(t *testing.T) {
	s := NewNodeStore(NewHandleWithID(8, "self"), 6, 3)
	pred := NewHandleWithID(4, "pred")

	s.SetPredecessor(pred)
	got, ok := s.Predecessor()
	require.True(t, ok)
	assert.Equal(t, pred, got)

	s.UnsetPredecessor()
	_, ok = s.Predecessor()
	assert.False(t, ok)
}

func TestNodeStoreFillFingers(t *testing.T) {
	s := NewNodeStore(NewHandleWithID(8, "self"), 6, 3)
	peer := NewHandleWithID(16, "peer")
	s.SetSuccessor(peer)

	self := s.Self()
	s.FillFingers(self)

	for _, f := range s.Fingers() {
		assert.Equal(t, self, f.Peer)
	}
	for _, h := range s.SuccessorList() {
		assert.Equal(t, self, h)
	}
}
