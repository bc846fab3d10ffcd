package structured

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/extract"
	"github.com/revenue-cat-hackwit/recook-edge-function/internal/utils"
	"github.com/revenue-cat-hackwit/recook-edge-function/providers/observability"
)

// ErrUnreadable is returned when no attempt produced usable output. Its text
// is safe to show end users; the wrapped *extract.Failure is for logs.
var ErrUnreadable = errors.New("could not interpret response")

// Generator produces free text for a prompt, typically by calling an LLM.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// FailureRecord is one failed extraction, as handed to a Recorder.
type FailureRecord struct {
	Task     string
	Shape    extract.Kind
	Reason   extract.Reason
	Missing  []string
	Snippet  string
	Attempt  int
	Occurred time.Time
}

// Recorder stores failure records. Errors are logged and otherwise ignored.
type Recorder interface {
	RecordFailure(ctx context.Context, record FailureRecord) error
}

// Response is the outcome of a successful Generate.
type Response[T any] struct {
	Data     T
	Raw      string // text the data came from; empty on fallback
	Attempts int
	FellBack bool
}

// Client recovers values of type T from a Generator.
type Client[T any] struct {
	gen      Generator
	shape    extract.Shape
	fallback func() T
	opts     options
}

// New creates a Client for shape. It panics if shape is malformed, the same
// way extract.Extract would on first use.
func New[T any](gen Generator, shape extract.Shape, opts ...Option) *Client[T] {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	o := options{
		maxAttempts:  DefaultMaxAttempts,
		strictSuffix: DefaultStrictSuffix,
		observer:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client[T]{gen: gen, shape: shape, opts: o}
}

// WithFallback returns a copy of c that answers with fallback() instead of
// failing once every attempt is spent on unreadable output. Upstream errors
// are still returned.
func (c *Client[T]) WithFallback(fallback func() T) *Client[T] {
	clone := *c
	clone.fallback = fallback
	return &clone
}

// Shape returns the shape responses are checked against.
func (c *Client[T]) Shape() extract.Shape {
	return c.shape
}

// Generate asks for prompt, retrying with the strict suffix while the output
// cannot be extracted. A Generator error ends the run immediately, as does
// ctx being done between attempts.
func (c *Client[T]) Generate(ctx context.Context, prompt string) (*Response[T], error) {
	obs := c.opts.observer
	start := time.Now()
	ctx, span := obs.StartSpan(ctx, observability.SpanGenerate,
		observability.String(observability.AttrTask, c.opts.task),
		observability.String(observability.AttrShapeKind, c.shape.Kind.String()),
	)
	defer span.End()

	resp, err := c.run(ctx, prompt)

	attempts := 0
	if resp != nil {
		attempts = resp.Attempts
	}
	obs.Histogram(observability.MetricGenerateDuration).Record(ctx, time.Since(start).Seconds(),
		observability.String(observability.AttrTask, c.opts.task))
	span.SetAttributes(observability.Int(observability.AttrAttempt, attempts))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		return nil, err
	}
	span.SetAttributes(observability.Bool(observability.AttrFallback, resp.FellBack))
	span.SetStatus(observability.StatusOK, "")
	return resp, nil
}

func (c *Client[T]) run(ctx context.Context, prompt string) (*Response[T], error) {
	obs := c.opts.observer
	var last *extract.Failure

	for attempt := 1; attempt <= c.opts.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := prompt
		if attempt > 1 && c.opts.strictSuffix != "" && !strings.HasSuffix(prompt, c.opts.strictSuffix) {
			p = prompt + c.opts.strictSuffix
		}

		raw, err := c.gen.Generate(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("generate (attempt %d): %w", attempt, err)
		}

		res := extract.Extract(raw, c.shape, c.opts.extractOpts...)
		if res.OK() {
			var data T
			if err := extract.Into(res.Value, &data); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
			}
			c.recordAttempts(ctx, attempt)
			obs.Debug(ctx, "structured output extracted",
				observability.String(observability.AttrTask, c.opts.task),
				observability.Int(observability.AttrAttempt, attempt),
				observability.String(observability.AttrOutput, utils.TruncateString(raw, 0)),
			)
			return &Response[T]{Data: data, Raw: raw, Attempts: attempt}, nil
		}

		last = res.Failure
		c.reportFailure(ctx, attempt, last)
	}

	c.recordAttempts(ctx, c.opts.maxAttempts)
	if c.fallback != nil {
		obs.Counter(observability.MetricFallbacks).Add(ctx, 1,
			observability.String(observability.AttrTask, c.opts.task))
		obs.Info(ctx, "using fallback value",
			observability.String(observability.AttrTask, c.opts.task),
			observability.String(observability.AttrReason, last.Reason.String()),
		)
		return &Response[T]{Data: c.fallback(), Attempts: c.opts.maxAttempts, FellBack: true}, nil
	}
	return &Response[T]{Attempts: c.opts.maxAttempts}, fmt.Errorf("%w: %w", ErrUnreadable, last)
}

func (c *Client[T]) reportFailure(ctx context.Context, attempt int, f *extract.Failure) {
	obs := c.opts.observer
	obs.Counter(observability.MetricExtractFailures).Add(ctx, 1,
		observability.String(observability.AttrTask, c.opts.task),
		observability.String(observability.AttrReason, f.Reason.String()),
	)
	attrs := []observability.Attribute{
		observability.String(observability.AttrTask, c.opts.task),
		observability.Int(observability.AttrAttempt, attempt),
		observability.String(observability.AttrReason, f.Reason.String()),
		observability.String(observability.AttrSnippet, f.Snippet),
	}
	if len(f.Missing) > 0 {
		attrs = append(attrs, observability.String(observability.AttrMissing, strings.Join(f.Missing, ",")))
	}
	obs.Warn(ctx, "could not extract structured output", attrs...)

	if c.opts.recorder == nil {
		return
	}
	record := FailureRecord{
		Task:     c.opts.task,
		Shape:    c.shape.Kind,
		Reason:   f.Reason,
		Missing:  f.Missing,
		Snippet:  f.Snippet,
		Attempt:  attempt,
		Occurred: time.Now().UTC(),
	}
	if err := c.opts.recorder.RecordFailure(ctx, record); err != nil {
		obs.Error(ctx, "failed to record extraction failure",
			observability.String(observability.AttrTask, c.opts.task),
			observability.Error(err),
		)
	}
}

func (c *Client[T]) recordAttempts(ctx context.Context, attempts int) {
	c.opts.observer.Histogram(observability.MetricAttempts).Record(ctx, float64(attempts),
		observability.String(observability.AttrTask, c.opts.task))
}
