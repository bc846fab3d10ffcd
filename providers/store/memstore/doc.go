// Package memstore provides a concurrency-safe, slice-backed failure recorder
// that keeps [structured.FailureRecord] values in process memory.
// It suits tests and single-process tools where the audit trail does not need
// to survive a restart. Use pgstore for durable storage.
package memstore
