// Package structured runs the caller side of structured output: ask a
// text-generation source for JSON, recover it with the extract package, and
// on failure retry with a stricter instruction, fall back to a default, or
// give up with [ErrUnreadable].
//
// The generation source is any [Generator]; this package speaks no provider
// protocol. Failures are reported to an observability.Provider and, when
// configured, to a [Recorder] for durable auditing.
package structured
