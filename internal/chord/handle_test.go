package chord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHandleDerivesIDFromEndpoint(t *testing.T) {
	a := NewHandle("10.0.0.1:7000")
	b := NewHandle("10.0.0.1:7000")
	c := NewHandle("10.0.0.2:7000")

	assert.Equal(t, a.ID, b.ID, "hashing the same endpoint must be deterministic")
	assert.NotEqual(t, a.ID, c.ID)
}

func TestNewHandleWithIDBypassesHash(t *testing.T) {
	h := NewHandleWithID(42, "10.0.0.1:7000")

	assert.Equal(t, uint64(42), h.ID)
	assert.NotEqual(t, HashEndpoint(h.Endpoint), h.ID)
}

func TestHandleEqual(t *testing.T) {
	a := NewHandleWithID(1, "x")
	b := NewHandleWithID(1, "y")
	c := NewHandleWithID(2, "x")

	assert.True(t, a.Equal(b), "equality is by id only")
	assert.False(t, a.Equal(c))
}
