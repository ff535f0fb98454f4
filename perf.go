package cachebench

// MissCounter counts last-level cache misses in the bracketed region.
// Purely observational: the inference never consumes counter values, they
// only corroborate the latency curves in the diagnostic log.
type MissCounter interface {
	Start() error
	Stop() (uint64, error)
	Close() error
}
