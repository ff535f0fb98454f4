package cachebench

import (
	"testing"
)

// fakeSampler replays a fixed series of values and counts how many
// samples were drawn.
type fakeSampler struct {
	values []float64
	calls  int
}

func (s *fakeSampler) Sample() (float64, error) {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v, nil
}

func TestConvergeConstantSampler(t *testing.T) {
	// A sampler that always returns the same value must converge after
	// exactly the required number of consecutive trials and return it.
	const v = 12345.0
	const required = 5
	s := &fakeSampler{values: []float64{v}}

	mean, err := Converge(s, ConvergeOptions{
		Precision: 1.0,
		Required:  required,
		MaxTrials: 200,
	})
	if err != nil {
		t.Fatalf("Converge: %v", err)
	}
	if mean != v {
		t.Errorf("mean = %g, want %g", mean, v)
	}
	if s.calls != required {
		t.Errorf("converged after %d trials, want exactly %d", s.calls, required)
	}
}

func TestConvergeDivergentSampler(t *testing.T) {
	// Alternating between two sufficiently different values keeps the
	// running mean moving by more than the tolerance, so the trial budget
	// must be exhausted exactly, never undershot or overshot.
	const maxTrials = 30
	s := &fakeSampler{values: []float64{1e9, 3e9}}

	_, err := Converge(s, ConvergeOptions{
		Precision: 1.0,
		Required:  5,
		MaxTrials: maxTrials,
	})
	if !IsConvergenceError(err) {
		t.Fatalf("Converge = %v, want convergence error", err)
	}
	if s.calls != maxTrials {
		t.Errorf("diverged after %d trials, want exactly %d", s.calls, maxTrials)
	}
}

func TestConvergeAbsoluteTolerance(t *testing.T) {
	// Near-zero means make relative error meaningless; the absolute mode
	// bounds the raw difference between successive running means instead.
	s := &fakeSampler{values: []float64{0.5, 0.5004}}

	mean, err := Converge(s, ConvergeOptions{
		Precision: 1e-3,
		Absolute:  true,
		Required:  3,
		MaxTrials: 100,
	})
	if err != nil {
		t.Fatalf("Converge: %v", err)
	}
	if mean < 0.5 || mean > 0.5004 {
		t.Errorf("mean = %g, want within the sampled band", mean)
	}
}

func TestConvergeRequiresConsecutiveRuns(t *testing.T) {
	// One out-of-tolerance trial must reset the success streak.
	s := &fakeSampler{values: []float64{
		100, 100, 100, 100, // streak of four
		1000,                    // reset
		100, 100, 100, 100, 100, // streak completes from scratch
		100, 100, 100, 100, 100,
	}}

	_, err := Converge(s, ConvergeOptions{
		Precision: 1.0,
		Required:  5,
		MaxTrials: 100,
	})
	if err != nil {
		t.Fatalf("Converge: %v", err)
	}
	if s.calls <= 5 {
		t.Errorf("converged after %d trials, want more than the streak length", s.calls)
	}
}

type errorSampler struct{}

func (errorSampler) Sample() (float64, error) {
	return 0, NewInvalidArgError("Sample", "broken sampler", nil)
}

func TestConvergePropagatesSamplerError(t *testing.T) {
	_, err := Converge(errorSampler{}, ConvergeOptions{
		Precision: 1.0,
		Required:  5,
		MaxTrials: 100,
	})
	if !IsInvalidArgError(err) {
		t.Errorf("Converge = %v, want the sampler's error", err)
	}
}
