package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/wheelsched/core/command"
	"github.com/kilianp07/wheelsched/core/logger"
)

// Source identifies which strategy produced a payload.
type Source string

const (
	SourceModel   Source = "model"
	SourcePattern Source = "pattern"
)

// Strategy converts text into a payload and may fail.
type Strategy interface {
	Extract(ctx context.Context, text string) (command.Payload, error)
}

// Result is the outcome of the extraction chain.
type Result struct {
	Payload command.Payload
	Source  Source
	// Fallback holds the model error that caused the pattern strategy to be
	// used. It is nil when no model is configured or the model succeeded.
	Fallback error
	Latency  time.Duration
}

// Extractor tries an optional primary strategy, then the pattern strategy.
type Extractor struct {
	primary  Strategy
	patterns *PatternExtractor
	timeout  time.Duration
	log      logger.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the strategy attempted before the patterns.
func WithModel(s Strategy) Option { return func(e *Extractor) { e.primary = s } }

// WithTimeout bounds each primary attempt. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l logger.Logger) Option { return func(e *Extractor) { e.log = l } }

// DefaultTimeout bounds a model attempt when no timeout is configured.
const DefaultTimeout = 4 * time.Second

// New builds the chain around patterns.
func New(patterns *PatternExtractor, opts ...Option) *Extractor {
	e := &Extractor{patterns: patterns, timeout: DefaultTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract never fails: every text yields a payload.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	start := time.Now()
	var fallback error
	if e.primary != nil {
		p, err := e.tryPrimary(ctx, text)
		if err == nil {
			return Result{Payload: p, Source: SourceModel, Latency: time.Since(start)}
		}
		fallback = err
		if e.log != nil {
			e.log.Warnf("model extraction failed, using patterns: %v", err)
		}
	}
	return Result{
		Payload:  e.patterns.Parse(text),
		Source:   SourcePattern,
		Fallback: fallback,
		Latency:  time.Since(start),
	}
}

func (e *Extractor) tryPrimary(ctx context.Context, text string) (p command.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model strategy panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.primary.Extract(ctx, text)
}

// FallbackReason classifies a model failure for metrics labels.
func FallbackReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrNoCredential):
		return "no_credential"
	case errors.Is(err, command.ErrMalformed):
		return "malformed"
	default:
		return "error"
	}
}
