package txn

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// idAllocator hands out 16-bit transaction IDs. It seeds from crypto/rand
// (never math/rand — a predictable seed is exactly the weakness DNS cache
// poisoning exploits) and then increments with wraparound, matching
// spec.md §4.4 "per-client 16-bit counter initialized to a random value,
// incremented with wrap-around on each send."
type idAllocator struct {
	counter atomic.Uint32 // only the low 16 bits are meaningful
}

func newIDAllocator() *idAllocator {
	a := &idAllocator{}
	a.counter.Store(uint32(randomSeed()))
	return a
}

func randomSeed() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("txn: crypto/rand failed: %v", err))
	}
	return binary.BigEndian.Uint16(buf[:])
}

// next returns the next transaction ID. Concurrent callers each get a
// distinct value (the atomic add serializes them); the 65536-entry space
// is never checked against the in-flight map here — spec.md §4.4 treats
// collisions with a tiny pending set as acceptable and leaves reconciling
// them optional.
func (a *idAllocator) next() uint16 {
	return uint16(a.counter.Add(1))
}
