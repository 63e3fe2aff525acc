// Package pipeline orchestrates a single read: fetch from the upstream source,
// parse the payload, and hand exactly one result to the caller.
//
// The caller is the response boundary. Whatever goes wrong along the way,
// including a panic in the source or parser, the error it receives is a
// *domainerrors.Error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"faultline/internal/pipeline/metrics"
	"faultline/internal/upstream"
	dErrors "faultline/pkg/domain-errors"
	"faultline/pkg/platform/sentinel"
	"faultline/pkg/requestcontext"
)

const tracerName = "faultline/internal/pipeline"

// errNoRecord flags a parser that reported success without a record.
var errNoRecord = errors.New("parser returned no record")

// Source delivers raw payloads. *upstream.Source implements it.
type Source interface {
	Fetch(ctx context.Context) (upstream.RawPayload, error)
}

// ParseFunc decodes a raw payload.
type ParseFunc func(raw upstream.RawPayload) (upstream.Record, error)

// Outcome is the terminal result of one read. Exactly one of Record and Err
// is set.
type Outcome struct {
	State  State
	Record upstream.Record
	Err    *dErrors.Error
	Trail  []State
}

// Service runs reads against a source.
type Service struct {
	source  Source
	parse   ParseFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the service metrics. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithParser replaces upstream.Parse.
func WithParser(parse ParseFunc) Option {
	return func(s *Service) {
		if parse != nil {
			s.parse = parse
		}
	}
}

// WithTracerProvider sets where spans are sent. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// New constructs a Service reading from source.
func New(source Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		parse:  upstream.Parse,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read runs one read and returns the record, or a *domainerrors.Error.
func (s *Service) Read(ctx context.Context) (upstream.Record, error) {
	out := s.Run(ctx)
	if out.Err != nil {
		return nil, out.Err
	}
	return out.Record, nil
}

// Run drives one read through its states and returns the terminal outcome.
// No retries are attempted: the first failure ends the read.
func (s *Service) Run(ctx context.Context) (out Outcome) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "pipeline.read")
	defer span.End()

	t := &tracker{state: StateStart, trail: []State{StateStart}}
	defer func() {
		if rec := recover(); rec != nil {
			out = t.fail(panicError(rec))
		}
		s.finish(ctx, span, out, time.Since(start))
	}()

	t.advance(StateAwaitingSource)
	raw, err := s.fetch(ctx)
	if err != nil {
		return t.fail(dErrors.Normalize(err))
	}

	t.advance(StateParsing)
	record, err := s.decode(ctx, raw)
	if err != nil {
		return t.fail(dErrors.Normalize(err))
	}

	return t.done(record)
}

func (s *Service) fetch(ctx context.Context) (upstream.RawPayload, error) {
	ctx, span := s.tracer.Start(ctx, "upstream.fetch")
	defer span.End()

	start := time.Now()
	raw, err := s.source.Fetch(ctx)
	s.metrics.ObserveSourceLatency(time.Since(start))
	if err != nil {
		recordSpanError(span, err)
		return "", err
	}
	span.SetAttributes(attribute.Int("payload.bytes", len(raw)))
	return raw, nil
}

func (s *Service) decode(ctx context.Context, raw upstream.RawPayload) (upstream.Record, error) {
	_, span := s.tracer.Start(ctx, "upstream.parse")
	defer span.End()

	record, err := s.parse(raw)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if record == nil {
		err = errNoRecord
		recordSpanError(span, err)
		return nil, err
	}
	return record, nil
}

func (s *Service) finish(ctx context.Context, span trace.Span, out Outcome, elapsed time.Duration) {
	s.metrics.ObserveReadLatency(elapsed)
	requestID := requestcontext.RequestID(ctx)

	if out.Err == nil {
		s.metrics.IncrementOutcome(string(out.State), "")
		s.logger.InfoContext(ctx, "read completed",
			"request_id", requestID,
			"state", out.State,
			"duration_ms", elapsed.Milliseconds(),
		)
		return
	}

	recordSpanError(span, out.Err)
	s.metrics.IncrementOutcome(string(out.State), string(out.Err.Code))

	level := slog.LevelWarn
	if out.Err.Code == dErrors.CodeInternal {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "read failed",
		"request_id", requestID,
		"state", out.State,
		"status", out.Err.StatusCode,
		"error", out.Err,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// panicError turns a recovered panic into an internal error. Error-valued
// panics stay in the cause chain, but a panic is always a 500 whatever it
// carries.
func panicError(rec any) *dErrors.Error {
	cause, ok := rec.(error)
	if ok {
		cause = fmt.Errorf("pipeline panic: %w", cause)
	} else {
		cause = fmt.Errorf("pipeline panic: %v", rec)
	}
	return dErrors.Wrap(cause, dErrors.CodeInternal, dErrors.InternalMessage)
}

func recordSpanError(span trace.Span, err error) {
	de := dErrors.Normalize(err)
	span.RecordError(err)
	span.SetAttributes(attribute.Int("http.response.status_code", de.StatusCode))
	span.SetStatus(codes.Error, de.Message)
}

// tracker enforces the state machine for one read.
type tracker struct {
	state State
	trail []State
}

// advance moves to next. An illegal transition is a defect and panics; Run
// recovers it into an internal error.
func (t *tracker) advance(next State) {
	if !t.state.CanTransition(next) {
		panic(fmt.Errorf("%w: pipeline transition %s -> %s", sentinel.ErrInvalidState, t.state, next))
	}
	t.state = next
	t.trail = append(t.trail, next)
}

func (t *tracker) fail(err *dErrors.Error) Outcome {
	if t.state != StateFailed {
		t.state = StateFailed
		t.trail = append(t.trail, StateFailed)
	}
	return Outcome{State: StateFailed, Err: err, Trail: t.trail}
}

func (t *tracker) done(record upstream.Record) Outcome {
	t.advance(StateDone)
	return Outcome{State: StateDone, Record: record, Trail: t.trail}
}
