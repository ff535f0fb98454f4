package cachebench

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// HardwareBench measures real hardware: for each parameter point it
// regenerates the chain in the arena, then samples traversals until the
// latency estimate converges.
type HardwareBench struct {
	arena   *Arena
	cfg     Config
	clock   Clock
	flusher *Flusher
	rng     *rand.Rand
	log     *logrus.Logger
	misses  MissCounter
}

// NewHardwareBench wires the arena, clock and configuration together. The
// randomized chain mode additionally allocates the flush array walked
// between trials.
func NewHardwareBench(arena *Arena, cfg Config, clock Clock, log *logrus.Logger) *HardwareBench {
	b := &HardwareBench{
		arena: arena,
		cfg:   cfg,
		clock: clock,
		log:   log,
	}
	if cfg.Mode == ChainRandom {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		b.rng = rand.New(rand.NewSource(seed))
		b.flusher = NewFlusher(cfg.FlushBufferLength)
	}
	if cfg.EnablePerf {
		counter, err := NewLLCMissCounter()
		if err != nil {
			log.Warnf("cache miss counter unavailable: %v", err)
		} else {
			b.misses = counter
		}
	}
	return b
}

// Measure regenerates the chain for the given parameters and runs the
// sampler to convergence.
func (b *HardwareBench) Measure(p Params) (float64, error) {
	b.log.Infof("stride = %d, array size = %d", p.Stride, p.ArrSize)

	var sampler Sampler
	switch b.cfg.Mode {
	case ChainRandom:
		length, err := GenerateRandomChain(
			b.arena, p.Stride, p.ArrSize, b.cfg.RandomAccessBudget, b.rng)
		if err != nil {
			return 0, err
		}
		b.log.Debugf("generated random chain of %d slots", length)
		sampler = NewRandomChaseSampler(b.arena, b.clock, b.cfg.NAccesses, b.flusher)
	default:
		length, err := GenerateChain(b.arena, p.Stride, p.ArrSize)
		if err != nil {
			return 0, err
		}
		b.log.Debugf("generated strided cycle of %d links", length)
		sampler = NewChaseSampler(b.arena, b.clock, b.cfg.NAccesses)
	}

	mean, err := Converge(sampler, ConvergeOptions{
		Precision: b.cfg.Precision,
		Required:  b.cfg.RequiredConvergedRuns,
		MaxTrials: b.cfg.TotalRunsThreshold,
		Log:       b.log,
	})
	if err != nil {
		return 0, err
	}

	if b.misses != nil {
		b.logMissRate(sampler)
	}
	return mean, nil
}

// logMissRate brackets one extra untimed traversal with the LLC miss
// counter. Purely observational; counter failures degrade to a warning.
func (b *HardwareBench) logMissRate(sampler Sampler) {
	if err := b.misses.Start(); err != nil {
		b.log.Warnf("miss counter start failed: %v", err)
		return
	}
	if _, err := sampler.Sample(); err != nil {
		b.log.Warnf("miss counter traversal failed: %v", err)
		return
	}
	count, err := b.misses.Stop()
	if err != nil {
		b.log.Warnf("miss counter read failed: %v", err)
		return
	}
	b.log.Infof("LLC misses: %d (%.4f per access)",
		count, float64(count)/float64(b.cfg.NAccesses))
}

// Close releases the optional miss counter.
func (b *HardwareBench) Close() {
	if b.misses != nil {
		b.misses.Close()
	}
}
