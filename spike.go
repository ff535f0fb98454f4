package cachebench

// SpikePolicy selects how a latency curve is turned into a discrete
// boundary. The three policies are interchangeable strategies; the
// orchestrator picks one per probe.
type SpikePolicy int

const (
	// MeanExceedance returns the first point whose increase ratio strictly
	// exceeds the mean increase of the curve. Suited to early threshold
	// crossings like the line size boundary.
	MeanExceedance SpikePolicy = iota

	// MaxIncrease returns the point with the globally maximal increase
	// ratio. Suited to curves with a single dominant jump.
	MaxIncrease

	// FixedThreshold returns the first point whose absolute latency delta
	// from the prior point reaches a fixed constant. Suited to sweeps
	// whose base latencies make ratios unreliable.
	FixedThreshold
)

// FindSpike scans a latency curve for the boundary under the given policy
// and returns the parameters of the detected point. The first point of the
// curve is never a detection signal: its increase is computed against a
// sentinel baseline.
//
// threshold is only consulted by FixedThreshold.
func FindSpike(results []Result, policy SpikePolicy, threshold float64) (Params, error) {
	if len(results) < 2 {
		return Params{}, NewInvalidArgError("FindSpike",
			"latency curve needs at least two points", nil)
	}
	switch policy {
	case MeanExceedance:
		return findMeanExceedance(results)
	case MaxIncrease:
		return findMaxIncrease(results), nil
	case FixedThreshold:
		return findFixedThreshold(results, threshold)
	default:
		return Params{}, NewInvalidArgError("FindSpike",
			"unknown spike policy", nil)
	}
}

func findMeanExceedance(results []Result) (Params, error) {
	sum := 0.0
	for _, r := range results[1:] {
		sum += r.Increase
	}
	meanIncrease := sum / float64(len(results)-1)

	for _, r := range results[1:] {
		if r.Increase > meanIncrease {
			return r.Params, nil
		}
	}
	return Params{}, NewSpikeNotFoundError("FindSpike",
		"no performance spikes detected")
}

func findMaxIncrease(results []Result) Params {
	best := results[1]
	for _, r := range results[2:] {
		if r.Increase > best.Increase {
			best = r
		}
	}
	return best.Params
}

func findFixedThreshold(results []Result, threshold float64) (Params, error) {
	prev := results[0].Latency
	for _, r := range results[1:] {
		if r.Latency-prev >= threshold {
			return r.Params, nil
		}
		prev = r.Latency
	}
	return Params{}, NewSpikeNotFoundError("FindSpike",
		"no latency delta reached the threshold")
}
