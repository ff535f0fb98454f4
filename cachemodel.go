package cachebench

import (
	"math/rand"
)

// A simulated memory hierarchy. The model assigns a fixed penalty to every
// access depending on which level it hits, which makes the whole probe
// pipeline runnable without hardware timing: detection heuristics and
// search ranges can be validated against a hierarchy whose parameters are
// known exactly.

// MemoryModel is one level of the simulated hierarchy.
type MemoryModel interface {
	// Access charges the penalty for one access to the given byte address.
	Access(addr uint64)

	// TotalPenalty returns the accumulated penalty of this level and every
	// level below it.
	TotalPenalty() uint64
}

// RAMModel is the bottom of the hierarchy: every access costs the same.
type RAMModel struct {
	penalty uint64
	total   uint64
}

// NewRAMModel returns a flat-penalty memory.
func NewRAMModel(penalty uint64) *RAMModel {
	return &RAMModel{penalty: penalty}
}

// Access charges the flat penalty.
func (m *RAMModel) Access(addr uint64) {
	m.total += m.penalty
}

// TotalPenalty returns the accumulated penalty.
func (m *RAMModel) TotalPenalty() uint64 {
	return m.total
}

// CacheModel is one cache level: nSets sets of nWays lines of lineSize
// bytes each, FIFO replacement within a set. Hits cost hitPenalty; misses
// are delegated to the next level. nSets of 1 models a fully associative
// cache.
type CacheModel struct {
	nSets      uint64
	nWays      int
	lineSize   uint64
	hitPenalty uint64
	next       MemoryModel

	queues [][]uint64
	cached map[uint64]struct{}
	total  uint64
}

// NewCacheModel builds a fully associative cache level in front of next.
func NewCacheModel(nLines int, lineSize, hitPenalty uint64, next MemoryModel) *CacheModel {
	return NewSetAssociativeCacheModel(1, nLines, lineSize, hitPenalty, next)
}

// NewSetAssociativeCacheModel builds a set-associative cache level in
// front of next. Lines map to sets by line ID modulo nSets.
func NewSetAssociativeCacheModel(nSets uint64, nWays int, lineSize, hitPenalty uint64, next MemoryModel) *CacheModel {
	if nSets == 0 || nWays <= 0 || lineSize == 0 {
		panic("cachebench: cache model needs positive set count, way count and line size")
	}
	return &CacheModel{
		nSets:      nSets,
		nWays:      nWays,
		lineSize:   lineSize,
		hitPenalty: hitPenalty,
		next:       next,
		queues:     make([][]uint64, nSets),
		cached:     make(map[uint64]struct{}),
	}
}

// Access charges a hit penalty or delegates a miss, then installs the line.
func (m *CacheModel) Access(addr uint64) {
	lineID := addr / m.lineSize
	if _, ok := m.cached[lineID]; ok {
		m.total += m.hitPenalty
	} else {
		m.next.Access(addr)
	}
	m.install(lineID)
}

func (m *CacheModel) install(lineID uint64) {
	if _, ok := m.cached[lineID]; ok {
		return
	}
	set := lineID % m.nSets
	queue := m.queues[set]
	if len(queue) == m.nWays {
		evicted := queue[0]
		queue = queue[1:]
		delete(m.cached, evicted)
	}
	m.queues[set] = append(queue, lineID)
	m.cached[lineID] = struct{}{}
}

// TotalPenalty returns the accumulated penalty of this level and below.
func (m *CacheModel) TotalPenalty() uint64 {
	return m.total + m.next.TotalPenalty()
}

// DefaultModelHierarchy builds the modeled hierarchy used by the simulate
// command: a 128KB 8-way L1 with 128 sets and 128-byte lines, behind it a
// 12MB L2, a 24MB L3 and a flat DRAM.
func DefaultModelHierarchy() MemoryModel {
	dram := NewRAMModel(1_000_000)
	l3 := NewCacheModel(3*Kilobyte, 8*Kilobyte, 10_000, dram)
	l2 := NewCacheModel(12*Kilobyte, Kilobyte, 10_000, l3)
	l1 := NewSetAssociativeCacheModel(128, 8, 128, 1, l2)
	return l1
}

// ModelBench replays strided traces through a freshly built hierarchy for
// every trial, through the exact same sweep and detection pipeline as the
// hardware bench.
//
// The line size probe replays directed random pairs (a random
// double-stride-aligned base followed by its stride neighbor), which
// isolates the line-sharing signal from sequential-access effects; the
// footprint probes replay the cyclic strided pattern.
type ModelBench struct {
	// Build returns a fresh hierarchy; state must not leak between
	// parameter points.
	Build func() MemoryModel

	// NAccesses is the normalization target: a trace of MaxTrace addresses
	// stands in for NAccesses dereferences.
	NAccesses uint64

	// MaxTrace caps the replayed trace length per trial.
	MaxTrace int

	// Seed makes directed-pair traces reproducible. Zero keeps the
	// default source.
	Seed int64

	Opts ConvergeOptions

	directed bool
	rng      *rand.Rand
}

// SetProbe switches the trace layout per probe stage.
func (b *ModelBench) SetProbe(name string) {
	b.directed = name == "cache_line_size"
}

// Measure replays the trace for one parameter point to convergence.
func (b *ModelBench) Measure(p Params) (float64, error) {
	if p.Stride == 0 || p.ArrSize == 0 {
		return 0, NewInvalidArgError("ModelBench.Measure",
			"stride and footprint must be positive", nil)
	}
	if b.rng == nil {
		seed := b.Seed
		if seed == 0 {
			seed = 1
		}
		b.rng = rand.New(rand.NewSource(seed))
	}
	return Converge(&modelSampler{bench: b, params: p}, b.Opts)
}

type modelSampler struct {
	bench  *ModelBench
	params Params
}

// Sample replays one trace and returns the total penalty scaled to
// NAccesses.
func (s *modelSampler) Sample() (float64, error) {
	b := s.bench
	model := b.Build()
	var addrs []uint64
	if b.directed {
		addrs = directedTrace(s.params, b.MaxTrace, b.rng)
	} else {
		addrs = cyclicTrace(s.params, b.MaxTrace)
	}
	for _, addr := range addrs {
		model.Access(addr)
	}
	perAccess := float64(model.TotalPenalty()) / float64(len(addrs))
	return perAccess * float64(b.NAccesses), nil
}

// cyclicTrace enumerates the cyclic strided access pattern: addresses
// 0, stride, 2*stride, ... wrapping at the footprint, capped at max
// accesses. The cap keeps huge-footprint sweeps affordable while still
// wrapping small footprints many times.
func cyclicTrace(p Params, max int) []uint64 {
	if max <= 0 {
		max = 1
	}
	addrs := make([]uint64, 0, max)
	addr := uint64(0)
	for len(addrs) < max {
		addrs = append(addrs, addr)
		addr += p.Stride
		if addr >= p.ArrSize {
			addr = 0
		}
	}
	return addrs
}

// directedTrace emits random pairs: a double-stride-aligned base followed
// by its stride neighbor. Whether the second access of a pair shares a
// line with the first depends only on the stride, so the latency curve
// steps exactly at the line size. Bases are distinct within a trace;
// repeats would turn first accesses into hits at a rate that varies with
// the stride and skew the curve.
func directedTrace(p Params, max int, rng *rand.Rand) []uint64 {
	nBases := p.ArrSize / (2 * p.Stride)
	if nBases == 0 {
		return cyclicTrace(p, max)
	}
	if max <= 1 {
		max = 2
	}
	pairs := uint64(max / 2)
	if pairs > nBases {
		pairs = nBases
	}
	seen := make(map[uint64]struct{}, pairs)
	addrs := make([]uint64, 0, 2*pairs)
	for uint64(len(seen)) < pairs {
		base := 2 * p.Stride * uint64(rng.Int63n(int64(nBases)))
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		addrs = append(addrs, base, base+p.Stride)
	}
	return addrs
}
