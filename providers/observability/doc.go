// Package observability defines the logging, metrics and tracing
// collaborator that callers hand to the recovery client. The extractor itself
// is pure and never logs; everything it reports flows through a [Provider]
// chosen by the caller.
//
// [Nop] discards everything and is the default. The slogobs subpackage backs
// a Provider with log/slog. semconv.go names the attribute keys, span names
// and metric names used across the module.
package observability
