// Package slogobs provides an observability.Provider implementation backed by
// Go's standard library log/slog, with an in-memory metrics store.
// The main entry point is [New]; output format and level can be tuned with
// [WithFormat], [WithLevel], [WithOutput] and [WithLogger], or through the
// RECOOK_LOG_FORMAT and RECOOK_LOG_LEVEL environment variables.
package slogobs
