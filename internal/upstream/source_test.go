package upstream

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "faultline/pkg/domain-errors"
	"faultline/pkg/platform/sentinel"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		sample float64
		want   Outcome
	}{
		{0, OutcomeTransportFailure},
		{0.1, OutcomeTransportFailure},
		{0.33, OutcomeTransportFailure},
		{0.3300001, OutcomeMalformed},
		{0.5, OutcomeMalformed},
		{0.66, OutcomeMalformed},
		{0.6600001, OutcomeGood},
		{0.9, OutcomeGood},
		{0.999999, OutcomeGood},
		{-3, OutcomeTransportFailure},
		{7, OutcomeGood},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.sample), "sample %v", tt.sample)
	}
}

func TestSourceFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("samples at or below 0.33 fail with 503", func(t *testing.T) {
		for _, sample := range []float64{0, 0.05, 0.1, 0.2, 0.33} {
			src := NewSource(WithLatency(0), WithSampler(FixedSampler(sample)))

			raw, err := src.Fetch(ctx)
			require.Error(t, err)
			assert.Empty(t, raw)

			de, ok := dErrors.As(err)
			require.True(t, ok, "expected normalized error for sample %v", sample)
			assert.Equal(t, http.StatusServiceUnavailable, de.StatusCode)
			assert.Equal(t, "Data read failed", de.Message)
			assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		}
	})

	t.Run("samples in (0.33, 0.66] deliver the malformed payload", func(t *testing.T) {
		for _, sample := range []float64{0.34, 0.5, 0.66} {
			src := NewSource(WithLatency(0), WithSampler(FixedSampler(sample)))

			raw, err := src.Fetch(ctx)
			require.NoError(t, err)
			assert.Equal(t, BadPayload, raw)
		}
	})

	t.Run("samples above 0.66 deliver the good payload", func(t *testing.T) {
		for _, sample := range []float64{0.67, 0.9, 0.99} {
			src := NewSource(WithLatency(0), WithSampler(FixedSampler(sample)))

			raw, err := src.Fetch(ctx)
			require.NoError(t, err)
			assert.Equal(t, GoodPayload, raw)
		}
	})

	t.Run("waits for the configured latency", func(t *testing.T) {
		src := NewSource(WithLatency(20*time.Millisecond), WithSampler(FixedSampler(0.9)))

		start := time.Now()
		_, err := src.Fetch(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		src := NewSource(WithLatency(time.Hour), WithSampler(FixedSampler(0.9)))
		ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, err := src.Fetch(ctx)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("nil sampler falls back to random", func(t *testing.T) {
		src := &Source{}
		raw, err := src.Fetch(ctx)
		if err != nil {
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
			return
		}
		assert.Contains(t, []RawPayload{GoodPayload, BadPayload}, raw)
	})
}

func TestNewSourceDefaults(t *testing.T) {
	src := NewSource(WithSampler(nil), WithLatency(-time.Second))
	assert.Equal(t, DefaultLatency, src.Latency)
	assert.IsType(t, RandomSampler{}, src.Sampler)
}

func TestSequenceSampler(t *testing.T) {
	s := NewSequenceSampler(0.1, 0.5, 0.9)
	got := []float64{s.Sample(), s.Sample(), s.Sample(), s.Sample()}
	assert.Equal(t, []float64{0.1, 0.5, 0.9, 0.1}, got)

	assert.Zero(t, NewSequenceSampler().Sample())
}

func TestSequenceSamplerConcurrent(t *testing.T) {
	s := NewSequenceSampler(0.1, 0.9)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := s.Sample()
			assert.Contains(t, []float64{0.1, 0.9}, v)
		}()
	}
	wg.Wait()
}

func TestRandomSamplerRange(t *testing.T) {
	var s RandomSampler
	for range 1000 {
		v := s.Sample()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
