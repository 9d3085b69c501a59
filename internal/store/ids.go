package store

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces opaque record ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random version 4 UUIDs. With 122 random bits the
// chance of a collision among a billion ids is below 1e-19.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator issues prefix-1, prefix-2, ... and never repeats within
// one process. Useful for deterministic fixtures.
type CounterGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewID returns the next id in sequence.
func (g *CounterGenerator) NewID() string {
	return g.Prefix + "-" + strconv.FormatUint(g.n.Add(1), 10)
}
