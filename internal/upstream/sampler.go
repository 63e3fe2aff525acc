package upstream

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Sampler draws the number that selects a fetch outcome. Values are expected
// in [0,1).
type Sampler interface {
	Sample() float64
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func() float64

func (f SamplerFunc) Sample() float64 { return f() }

// RandomSampler draws uniformly from [0,1). Safe for concurrent use.
type RandomSampler struct{}

func (RandomSampler) Sample() float64 { return rand.Float64() }

// FixedSampler always returns the same value.
type FixedSampler float64

func (s FixedSampler) Sample() float64 { return float64(s) }

// SequenceSampler returns its values in order and wraps around.
type SequenceSampler struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceSampler creates a SequenceSampler. An empty sequence always
// samples 0.
func NewSequenceSampler(values ...float64) *SequenceSampler {
	return &SequenceSampler{values: values}
}

func (s *SequenceSampler) Sample() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// clamp keeps a sample inside [0,1).
func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v >= 1:
		return 1 - 1e-9
	default:
		return v
	}
}
