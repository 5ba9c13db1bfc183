package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/roach88/litedocs/internal/value"
)

// SequentialIDs hands out predictable ObjectIDs for tests.
//
// The first call to Next returns 000000000000000000000001, the second
// 000000000000000000000002, and so on. Reset starts the sequence over so a
// scenario can be replayed with identical ids.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDs struct {
	mu  sync.Mutex
	seq uint64
}

// NewSequentialIDs returns a generator whose first id ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Next returns the next id in the sequence.
func (g *SequentialIDs) Next() value.ObjectID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return IDFor(g.seq)
}

// Current returns how many ids have been handed out.
func (g *SequentialIDs) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// IDFor returns the id SequentialIDs produces on its n-th call.
func IDFor(n uint64) value.ObjectID {
	var id value.ObjectID
	binary.BigEndian.PutUint64(id[4:], n)
	return id
}
