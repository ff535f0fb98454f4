package cachebench

import (
	"math/bits"

	"github.com/sirupsen/logrus"
)

// Properties is the final output of a full run. CacheSize is the total
// capacity of the cache level under test; Associativity the number of ways
// per set.
type Properties struct {
	CacheLineSize uint64
	CacheSize     uint64
	Associativity uint64
}

// probeAware sinks are told which probe stage the following points belong
// to. Sinks that do not care, like the CSV stream, simply don't implement
// it.
type probeAware interface {
	SetProbe(name string)
}

// Prober sequences the three probes. Each stage consumes the previous
// stage's output, so stage order is fixed: line size, then cache size,
// then associativity. Any stage failing fails the whole run; there is no
// partial result.
type Prober struct {
	cfg   Config
	bench Bench
	sink  ResultSink
	log   *logrus.Logger
}

// NewProber builds the orchestrator. The sink receives every sweep point
// of every probe in measurement order.
func NewProber(cfg Config, bench Bench, sink ResultSink, log *logrus.Logger) *Prober {
	return &Prober{
		cfg:   cfg,
		bench: bench,
		sink:  sink,
		log:   log,
	}
}

// Run resolves the full property tuple.
func (p *Prober) Run() (Properties, error) {
	lineSize, err := p.FindCacheLineSize()
	if err != nil {
		return Properties{}, err
	}
	p.log.Infof("result: cache line size is %d", lineSize)

	cacheSize, err := p.FindCacheSize(lineSize)
	if err != nil {
		return Properties{}, err
	}
	p.log.Infof("result: cache size is %d", cacheSize)

	associativity, err := p.FindAssociativity(lineSize, cacheSize)
	if err != nil {
		return Properties{}, err
	}
	p.log.Infof("result: associativity is %d", associativity)

	return Properties{
		CacheLineSize: lineSize,
		CacheSize:     cacheSize,
		Associativity: associativity,
	}, nil
}

// FindCacheLineSize sweeps the stride over [MinLineSize, MaxLineSize] by
// doubling, with the footprint fixed at the full arena. Once the stride
// reaches the true line size, consecutive accesses stop sharing a line and
// latency jumps.
func (p *Prober) FindCacheLineSize() (uint64, error) {
	p.setProbe("cache_line_size")
	seq := StrideSequence(p.cfg.MinLineSize, p.cfg.MaxLineSize, p.cfg.ArenaLength)
	results, err := Sweep(p.bench, seq, p.sink)
	if err != nil {
		return 0, err
	}
	spike, err := FindSpike(results, p.cfg.LineSizePolicy, 0)
	if err != nil {
		return 0, err
	}
	return spike.Stride, nil
}

// FindCacheSize sweeps the footprint linearly over
// [MinCacheSize, MaxCacheSize] at a stride of twice the line size, so no
// two chain slots share a line. The footprint at the first latency jump is
// the capacity boundary.
func (p *Prober) FindCacheSize(lineSize uint64) (uint64, error) {
	p.setProbe("cache_size")
	stride := 2 * lineSize
	seq := FootprintSequence(
		p.cfg.MinCacheSize, p.cfg.MaxCacheSize, p.cfg.CacheSizeStep, stride)
	results, err := Sweep(p.bench, seq, p.sink)
	if err != nil {
		return 0, err
	}
	spike, err := FindSpike(results, p.cfg.CacheSizePolicy, p.cfg.CacheSizeJumpThreshold)
	if err != nil {
		return 0, err
	}
	return spike.ArrSize, nil
}

// FindAssociativity fixes the stride at lineSize*MaxNSets so every chain
// slot maps to the same set, and sweeps the footprint over small integer
// multiples of that stride; each increment adds one conflicting way. The
// jump marks the assumed associativity, which is then reconciled with the
// measured cache size: real set counts are powers of two, so the raw
// set-count estimate is rounded down to one before the final way count is
// derived.
func (p *Prober) FindAssociativity(lineSize, cacheSize uint64) (uint64, error) {
	p.setProbe("associativity")
	stride := lineSize * p.cfg.MaxNSets
	seq := WaySequence(
		stride, p.cfg.MinAssociativity, p.cfg.MaxAssociativity, p.cfg.AssociativityStep)
	results, err := Sweep(p.bench, seq, p.sink)
	if err != nil {
		return 0, err
	}
	spike, err := FindSpike(results, p.cfg.AssociativityPolicy, p.cfg.AssociativityJumpThreshold)
	if err != nil {
		return 0, err
	}

	assumedAssociativity := spike.ArrSize / stride
	assumedNSets := cacheSize / (assumedAssociativity * lineSize)
	if assumedNSets < p.cfg.MinNSets {
		return 0, NewSpikeNotFoundError("FindAssociativity",
			"measured cache size is inconsistent with the detected way count")
	}
	roundedNSets := uint64(1) << (bits.Len64(assumedNSets) - 1)
	return (cacheSize / roundedNSets) / lineSize, nil
}

func (p *Prober) setProbe(name string) {
	p.log.Infof("probe: %s", name)
	if pa, ok := p.sink.(probeAware); ok {
		pa.SetProbe(name)
	}
	if pa, ok := p.bench.(probeAware); ok {
		pa.SetProbe(name)
	}
}
