// Package extract recovers a JSON value of an expected shape from free text
// produced by a language model. Models are told to answer with JSON only but
// routinely wrap it in markdown fences or surround it with prose, so [Extract]
// tries, in order, a direct parse, a parse after stripping code fences, and a
// parse of the first-open to last-close bracket span, then checks the result
// against a [Shape].
//
// Extraction never fails loudly on bad input: every outcome is a [Result]
// that either carries a value or a [*Failure] naming one of four reasons.
// Only a malformed [Shape] panics, since that is a programming error.
//
// The package is pure. It performs no I/O and no logging and holds no state,
// so a single [Shape] may be shared by any number of goroutines.
package extract
