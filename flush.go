package cachebench

// Flusher evicts prior state from the cache hierarchy by walking a large
// dummy array. Randomized-chain sampling runs it before every timed
// traversal so each sample starts from a cold cache; the walk must complete
// before the traversal begins, which the single-threaded execution model
// guarantees.
type Flusher struct {
	buf   []byte
	pass  byte
	touch int
}

// NewFlusher allocates a dummy array of the given length. The length must
// exceed the largest cache level; 64MB covers most L3 caches.
func NewFlusher(length int) *Flusher {
	return &Flusher{
		buf: make([]byte, length),
		// One touch per line is enough to claim it; 64 bytes covers every
		// line size the probes search for.
		touch: 64,
	}
}

// Evict touches every cache line of the dummy array twice with different
// write patterns, so lines already present from the previous pass are
// still replaced.
func (f *Flusher) Evict() {
	for i := 0; i < len(f.buf); i += f.touch {
		f.buf[i] = byte(i)
	}
	f.pass++
	p := f.pass
	for i := 0; i < len(f.buf); i += f.touch {
		f.buf[i] = byte(i)*7 + p
	}
}
