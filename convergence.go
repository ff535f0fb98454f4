package cachebench

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ConvergeOptions controls the statistical stabilization of repeated
// latency samples.
type ConvergeOptions struct {
	// Precision is the error bound between successive running means: a
	// percentage of the previous mean, or an absolute bound when Absolute
	// is set or the previous mean is zero.
	Precision float64
	Absolute  bool

	// Required consecutive in-tolerance trials before the mean is accepted.
	Required int

	// MaxTrials is the trial budget; exhausting it is a fatal condition.
	MaxTrials int

	Log *logrus.Logger
}

// Converge repeatedly samples the same measurement point, accumulates the
// running arithmetic mean, and returns it once the change between
// successive running means stays within tolerance for the required number
// of consecutive trials.
//
// Single samples are dominated by scheduling noise and frequency variance;
// sustained agreement of the running mean is what makes the returned value
// a usable point estimate. If the trial budget runs out first the
// measurement diverges, which is fatal: downstream spike detection must
// never see an unreliable estimate.
func Converge(s Sampler, opts ConvergeOptions) (float64, error) {
	n := 0
	sum := 0.0
	mean := 0.0
	successes := 0
	for n < opts.MaxTrials {
		v, err := s.Sample()
		if err != nil {
			return 0, err
		}
		n++
		sum += v
		curMean := sum / float64(n)
		curErr := convergeError(curMean, mean, n, opts.Absolute)
		if opts.Log != nil {
			opts.Log.Debugf("run %d: current mean = %g, current error = %g",
				n, curMean, curErr)
		}
		if curErr < opts.Precision {
			successes++
			if successes >= opts.Required {
				if opts.Log != nil {
					opts.Log.Debugf("converged to %g on the %d-th trial",
						curMean, n)
				}
				return curMean, nil
			}
		} else {
			successes = 0
		}
		mean = curMean
	}
	return 0, NewConvergenceError("Converge",
		"benchmark results diverge", nil)
}

func convergeError(cur, prev float64, n int, absolute bool) float64 {
	if n == 1 {
		// The running mean of a single sample does not differ from itself.
		return 0
	}
	if absolute || prev == 0 {
		return math.Abs(cur - prev)
	}
	return math.Abs(cur-prev) / prev * 100
}
