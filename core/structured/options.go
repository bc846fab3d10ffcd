package structured

import (
	"github.com/revenue-cat-hackwit/recook-edge-function/core/extract"
	"github.com/revenue-cat-hackwit/recook-edge-function/providers/observability"
)

const (
	// DefaultMaxAttempts matches the usual "structured, then plain prompt"
	// pair of calls.
	DefaultMaxAttempts = 2

	// DefaultStrictSuffix is appended to the prompt on every retry.
	DefaultStrictSuffix = "\n\nRespond with valid JSON only. Do not add any text before or after it and do not use markdown code fences."
)

// Option configures a Client.
type Option func(*options)

type options struct {
	task         string
	maxAttempts  int
	strictSuffix string
	observer     observability.Provider
	recorder     Recorder
	extractOpts  []extract.Option
}

// WithTask names the task in logs, metrics and failure records.
func WithTask(task string) Option {
	return func(o *options) {
		o.task = task
	}
}

// WithMaxAttempts sets how many generations are tried before giving up.
// Values below one are treated as one.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.maxAttempts = n
	}
}

// WithStrictSuffix replaces the instruction appended on retries.
func WithStrictSuffix(suffix string) Option {
	return func(o *options) {
		o.strictSuffix = suffix
	}
}

// WithObserver sets the observability provider. The default discards all.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithRecorder persists every failed extraction.
func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// WithExtractOptions passes options through to extract.Extract.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(o *options) {
		o.extractOpts = append(o.extractOpts, opts...)
	}
}
