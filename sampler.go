package cachebench

import (
	"unsafe"
)

// Sampler produces one elapsed-time observation for the measurement point
// it was built for. Implementations are consumed by the convergence engine.
type Sampler interface {
	Sample() (float64, error)
}

// chaseSink receives the final chased pointer so the dependent-load chain
// has an observable result and cannot be eliminated.
var chaseSink uint64

// ChaseSampler times pointer-chasing traversals of the chain currently
// materialized in the arena. The traversal loop is the sole measured
// region; each load address depends on the value just read, so the
// compiler cannot hoist or vectorize it and the CPU cannot hide the memory
// latency.
type ChaseSampler struct {
	arena *Arena
	clock Clock

	// nAccesses is the number of dereferences of a cyclic traversal, and
	// the normalization target of a null-terminated one.
	nAccesses uint64

	// Random chains are walked to their null terminator instead of a fixed
	// dereference count, and evict prior cache state before every sample.
	random  bool
	flusher *Flusher
}

// NewChaseSampler builds a sampler for a cyclic strided chain.
func NewChaseSampler(arena *Arena, clock Clock, nAccesses uint64) *ChaseSampler {
	return &ChaseSampler{
		arena:     arena,
		clock:     clock,
		nAccesses: nAccesses,
	}
}

// NewRandomChaseSampler builds a sampler for a null-terminated random
// chain. The flusher runs to completion before every timed traversal.
func NewRandomChaseSampler(arena *Arena, clock Clock, nAccesses uint64, flusher *Flusher) *ChaseSampler {
	return &ChaseSampler{
		arena:     arena,
		clock:     clock,
		nAccesses: nAccesses,
		random:    true,
		flusher:   flusher,
	}
}

// Sample traverses the chain once and returns the elapsed time in the
// clock's unit, scaled to nAccesses dereferences. It does not mutate the
// chain.
func (s *ChaseSampler) Sample() (float64, error) {
	if s.random {
		return s.sampleToNull()
	}
	return s.sampleCycle(), nil
}

func (s *ChaseSampler) sampleCycle() float64 {
	p := s.arena.Base()
	n := s.nAccesses
	s.clock.Start()
	for i := uint64(0); i < n; i++ {
		p = *(*uintptr)(unsafe.Pointer(p))
	}
	elapsed := s.clock.Stop()
	chaseSink = uint64(p)
	return elapsed
}

// sampleToNull walks the chain until the null terminator and normalizes
// the elapsed time by the realized chain length, since random construction
// usually produces a shorter chain than budgeted.
func (s *ChaseSampler) sampleToNull() (float64, error) {
	if s.flusher != nil {
		s.flusher.Evict()
	}
	p := s.arena.Base()
	hops := uint64(0)
	s.clock.Start()
	for {
		next := *(*uintptr)(unsafe.Pointer(p))
		if next == 0 {
			break
		}
		p = next
		hops++
	}
	elapsed := s.clock.Stop()
	chaseSink = uint64(p)
	if hops == 0 {
		return 0, NewInvalidArgError("ChaseSampler.Sample",
			"random chain is empty", nil)
	}
	return elapsed / float64(hops) * float64(s.nAccesses), nil
}
