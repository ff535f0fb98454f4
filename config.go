// Package cachebench configuration constants and the probe configuration.
package cachebench

// Size units
const (
	Kilobyte = 1024
	Megabyte = 1024 * Kilobyte
	Gigabyte = 1024 * Megabyte
)

// Slot geometry of the backing arena. A chain link occupies one slot.
const slotSize = 8

// ChainMode selects how the pointer chain is laid out in the arena.
type ChainMode int

const (
	// ChainStride links every stride-aligned slot in ascending order and
	// closes the cycle back to slot 0.
	ChainStride ChainMode = iota

	// ChainRandom links randomly chosen directed-stride pairs into a
	// null-terminated chain, simulating realistic random access.
	ChainRandom
)

// Config collects every knob of the probe pipeline. The defaults mirror the
// values the tool has been calibrated with; all of them can be overridden
// from the command line.
type Config struct {
	// Search bounds for the cache line size probe (bytes, swept by doubling).
	MinLineSize uint64
	MaxLineSize uint64

	// Search bounds for the cache size probe (bytes, swept linearly).
	MinCacheSize  uint64
	MaxCacheSize  uint64
	CacheSizeStep uint64

	// Assumed bounds on the number of sets. MaxNSets fixes the stride of the
	// associativity probe so that successive footprint multiples alias the
	// same set.
	MinNSets uint64
	MaxNSets uint64

	// Assumed associativity multiples swept by the associativity probe.
	MinAssociativity  uint64
	MaxAssociativity  uint64
	AssociativityStep uint64

	// Spike detection strategy per probe stage.
	LineSizePolicy      SpikePolicy
	CacheSizePolicy     SpikePolicy
	AssociativityPolicy SpikePolicy

	// Absolute latency jump thresholds for the FixedThreshold policy (same
	// unit as the sampler output, nanoseconds for the wall clock).
	CacheSizeJumpThreshold     float64
	AssociativityJumpThreshold float64

	// Backing arena length in bytes. Must exceed the largest cache level
	// under test by a wide margin.
	ArenaLength uint64

	// Number of pointer dereferences in one timed traversal.
	NAccesses uint64

	// Convergence: relative error bound in percent, the number of consecutive
	// in-tolerance trials required, and the trial budget after which a
	// measurement point is declared divergent.
	Precision             float64
	RequiredConvergedRuns int
	TotalRunsThreshold    int

	// Chain layout. RandomAccessBudget bounds the construction loop of the
	// randomized layout; FlushBufferLength sizes the dummy array walked
	// between randomized trials to evict prior cache state.
	Mode              ChainMode
	RandomAccessBudget int
	FlushBufferLength  int
	Seed               int64

	// Optional instrumentation.
	UseTSC     bool // cycle-accurate TSC timing instead of the wall clock
	EnablePerf bool // log LLC miss rates via perf_event_open (Linux only)
	Verify     bool // compare results against CPUID-reported geometry
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		MinLineSize: 16,
		MaxLineSize: 128,

		MinCacheSize:  32 * Kilobyte,
		MaxCacheSize:  70 * Kilobyte,
		CacheSizeStep: 2 * Kilobyte,

		MinNSets: 8,
		MaxNSets: 128,

		MinAssociativity:  4,
		MaxAssociativity:  16,
		AssociativityStep: 2,

		LineSizePolicy:      MeanExceedance,
		CacheSizePolicy:     FixedThreshold,
		AssociativityPolicy: FixedThreshold,

		CacheSizeJumpThreshold:     1e7,
		AssociativityJumpThreshold: 1.5e8,

		ArenaLength: 4 * Gigabyte,
		NAccesses:   500_000_000,

		Precision:             1.0,
		RequiredConvergedRuns: 5,
		TotalRunsThreshold:    200,

		Mode:               ChainStride,
		RandomAccessBudget: 1_000_000,
		FlushBufferLength:  64 * Megabyte,
	}
}

// Validate rejects configurations the probe pipeline cannot run with.
func (c Config) Validate() error {
	if c.ArenaLength == 0 || c.ArenaLength%slotSize != 0 {
		return NewInvalidArgError("Config.Validate",
			"arena length must be a positive multiple of the slot size", nil)
	}
	if c.MinLineSize < slotSize || c.MinLineSize%slotSize != 0 {
		return NewInvalidArgError("Config.Validate",
			"minimum line size must be a multiple of the slot size", nil)
	}
	if c.MaxLineSize < c.MinLineSize {
		return NewInvalidArgError("Config.Validate",
			"line size search range is empty", nil)
	}
	if c.MinCacheSize > c.MaxCacheSize || c.CacheSizeStep == 0 {
		return NewInvalidArgError("Config.Validate",
			"cache size search range is empty", nil)
	}
	if c.MaxCacheSize > c.ArenaLength {
		return NewInvalidArgError("Config.Validate",
			"cache size search range exceeds the arena", nil)
	}
	if c.MaxNSets == 0 || c.MaxNSets&(c.MaxNSets-1) != 0 {
		return NewInvalidArgError("Config.Validate",
			"maximum set count must be a power of two", nil)
	}
	if c.MinNSets == 0 || c.MinNSets > c.MaxNSets {
		return NewInvalidArgError("Config.Validate",
			"set count search range is empty", nil)
	}
	if c.MinAssociativity == 0 || c.MaxAssociativity < c.MinAssociativity ||
		c.AssociativityStep == 0 {
		return NewInvalidArgError("Config.Validate",
			"associativity search range is empty", nil)
	}
	if c.MaxAssociativity*c.MaxLineSize*c.MaxNSets > c.ArenaLength {
		return NewInvalidArgError("Config.Validate",
			"associativity probe footprint exceeds the arena", nil)
	}
	if c.NAccesses == 0 {
		return NewInvalidArgError("Config.Validate",
			"number of accesses must be positive", nil)
	}
	if c.Precision <= 0 {
		return NewInvalidArgError("Config.Validate",
			"precision must be positive", nil)
	}
	if c.RequiredConvergedRuns <= 0 ||
		c.TotalRunsThreshold < c.RequiredConvergedRuns {
		return NewInvalidArgError("Config.Validate",
			"trial budget must cover the required converged runs", nil)
	}
	if c.Mode == ChainRandom && c.RandomAccessBudget <= 0 {
		return NewInvalidArgError("Config.Validate",
			"random chain construction needs a positive access budget", nil)
	}
	return nil
}
