package cachebench

// Params defines one measurement point of a sweep.
type Params struct {
	Stride  uint64 // byte offset between linked slots
	ArrSize uint64 // footprint in bytes
}

// Result is one point of a latency curve. Increase is the ratio of this
// point's latency to the previous point's; the first point is computed
// against a baseline of 1.0 and carries no detection signal.
type Result struct {
	Params   Params
	Latency  float64
	Increase float64
}

// Bench runs one converged measurement for a parameter point. The hardware
// implementation regenerates the chain and times traversals; the simulated
// implementation replays a strided trace through a modeled hierarchy.
type Bench interface {
	Measure(p Params) (float64, error)
}

// ResultSink consumes sweep points as they converge.
type ResultSink interface {
	Write(r Result)
	Flush()
}

// Sweep measures every parameter point in order and returns the latency
// curve. Points are emitted to the sink incrementally, so a run that dies
// midway still leaves the converged prefix behind.
//
// The order of the sequence is part of the design: each point inherits the
// thermal and frequency state left by the previous one, so sweeps always
// run bottom to top.
func Sweep(b Bench, seq []Params, sink ResultSink) ([]Result, error) {
	results := make([]Result, 0, len(seq))
	prev := 1.0
	for _, p := range seq {
		latency, err := b.Measure(p)
		if err != nil {
			return nil, err
		}
		r := Result{
			Params:   p,
			Latency:  latency,
			Increase: latency / prev,
		}
		results = append(results, r)
		if sink != nil {
			sink.Write(r)
		}
		prev = latency
	}
	return results, nil
}

// StrideSequence enumerates stride doublings from min to max at a fixed
// footprint. Used by the cache line size probe.
func StrideSequence(minStride, maxStride, arrSize uint64) []Params {
	var seq []Params
	for stride := minStride; stride <= maxStride; stride *= 2 {
		seq = append(seq, Params{Stride: stride, ArrSize: arrSize})
	}
	return seq
}

// FootprintSequence enumerates linear footprint steps at a fixed stride.
// Used by the cache size probe.
func FootprintSequence(minSize, maxSize, step, stride uint64) []Params {
	var seq []Params
	for size := minSize; size <= maxSize; size += step {
		seq = append(seq, Params{Stride: stride, ArrSize: size})
	}
	return seq
}

// WaySequence enumerates footprints of k chain slots at a stride of one
// full assumed cache (line size times set count), for k in [minK, maxK]
// stepping by kStep. Every increment of k forces the chain to touch one
// additional way of the same set. Used by the associativity probe.
func WaySequence(stride, minK, maxK, kStep uint64) []Params {
	var seq []Params
	for k := minK; k <= maxK; k += kStep {
		seq = append(seq, Params{Stride: stride, ArrSize: k * stride})
	}
	return seq
}
