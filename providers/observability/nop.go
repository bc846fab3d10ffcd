package observability

import "context"

// Nop returns a Provider that discards every span, metric and log line.
func Nop() Provider {
	return nop{}
}

type nop struct{}

func (nop) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, nopSpan{}
}

func (nop) Counter(string) Counter { return nopInstrument{} }

func (nop) Histogram(string) Histogram { return nopInstrument{} }

func (nop) Debug(context.Context, string, ...Attribute) {}

func (nop) Info(context.Context, string, ...Attribute) {}

func (nop) Warn(context.Context, string, ...Attribute) {}

func (nop) Error(context.Context, string, ...Attribute) {}

type nopSpan struct{}

func (nopSpan) End() {}

func (nopSpan) SetAttributes(...Attribute) {}

func (nopSpan) SetStatus(StatusCode, string) {}

func (nopSpan) RecordError(error) {}

type nopInstrument struct{}

func (nopInstrument) Add(context.Context, int64, ...Attribute) {}

func (nopInstrument) Record(context.Context, float64, ...Attribute) {}
