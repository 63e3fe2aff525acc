// Package upstream simulates an unreliable data source and decodes what it
// returns.
//
// Source.Fetch waits a fixed latency and then, depending on one sample drawn
// from its Sampler, delivers a well-formed payload, a malformed payload, or a
// transport failure. Parse turns a payload into a Record. Both only ever fail
// with *domainerrors.Error values.
package upstream

import (
	"context"
	"time"

	dErrors "faultline/pkg/domain-errors"
	"faultline/pkg/platform/sentinel"
)

// RawPayload is the undecoded text delivered by the source.
type RawPayload string

const (
	// GoodPayload is delivered when the source behaves.
	GoodPayload RawPayload = `{"name":"Zaphod","id":"42"}`
	// BadPayload is delivered intact but cannot be decoded.
	BadPayload RawPayload = `{ name: "Zaphod", id: "42" }`
)

// Outcome thresholds. A sample above goodThreshold succeeds, one above
// malformedThreshold delivers BadPayload, anything else fails.
const (
	goodThreshold      = 0.66
	malformedThreshold = 0.33
)

// DefaultLatency is the simulated round trip of a fetch.
const DefaultLatency = 500 * time.Millisecond

const (
	MessageReadFailed   = "Data read failed"
	MessageReadCanceled = "Data read canceled"
)

// Outcome names the branch a sample selects.
type Outcome string

const (
	OutcomeGood             Outcome = "good"
	OutcomeMalformed        Outcome = "malformed"
	OutcomeTransportFailure Outcome = "transport_failure"
)

// Classify maps a sample to its outcome.
func Classify(sample float64) Outcome {
	sample = clamp(sample)
	switch {
	case sample > goodThreshold:
		return OutcomeGood
	case sample > malformedThreshold:
		return OutcomeMalformed
	default:
		return OutcomeTransportFailure
	}
}

// Source is the simulated unreliable upstream.
type Source struct {
	Latency time.Duration
	Sampler Sampler
}

// Option configures a Source.
type Option func(*Source)

// WithLatency overrides the simulated latency. Zero disables waiting.
func WithLatency(d time.Duration) Option {
	return func(s *Source) {
		if d >= 0 {
			s.Latency = d
		}
	}
}

// WithSampler injects the sample provider.
func WithSampler(sampler Sampler) Option {
	return func(s *Source) {
		if sampler != nil {
			s.Sampler = sampler
		}
	}
}

// NewSource creates a Source with DefaultLatency and a RandomSampler.
func NewSource(opts ...Option) *Source {
	s := &Source{
		Latency: DefaultLatency,
		Sampler: RandomSampler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch waits for the configured latency and then delivers a payload or a
// transport failure. A canceled context ends the wait early with a timeout
// error.
func (s *Source) Fetch(ctx context.Context) (RawPayload, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, MessageReadCanceled)
		case <-timer.C:
		}
	}

	switch Classify(s.sample()) {
	case OutcomeGood:
		return GoodPayload, nil
	case OutcomeMalformed:
		return BadPayload, nil
	default:
		return "", dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, MessageReadFailed)
	}
}

func (s *Source) sample() float64 {
	if s.Sampler == nil {
		return RandomSampler{}.Sample()
	}
	return s.Sampler.Sample()
}
