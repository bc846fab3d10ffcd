package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/revenue-cat-hackwit/recook-edge-function/internal/utils"
)

// DefaultSnippetLength is the number of runes of raw text kept in a
// [Failure] snippet.
const DefaultSnippetLength = 200

// Option tunes a single [Extract] call.
type Option func(*options)

type options struct {
	snippetLength int
	repair        bool
}

// WithSnippetLength bounds failure snippets to n runes. Zero disables them.
func WithSnippetLength(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.snippetLength = n
	}
}

// WithRepair enables a final attempt that runs the bracket span through
// jsonrepair when it does not parse as-is. This recovers trailing commas,
// single quotes, unquoted keys and truncated output, at the cost of
// occasionally accepting text a strict reader would reject.
func WithRepair() Option {
	return func(o *options) {
		o.repair = true
	}
}

// Extract recovers a value of the given shape from raw model output.
//
// Candidates are tried in order and the first one that parses and satisfies
// shape wins:
//
//  1. the trimmed text as-is;
//  2. the text with every "```json" and "```" marker removed;
//  3. the span from the first opening delimiter of shape's kind to the last
//     closing one, in the fence-stripped text.
//
// When nothing succeeds the failure reports the furthest stage reached:
// a parsed value missing keys beats a parsed value of the wrong kind, which
// beats a bracket span that did not parse, which beats finding no span.
//
// The span heuristic assumes a single top-level value. Text holding two
// objects, such as `{"a":1} and {"b":2}`, yields a span that does not parse.
//
// Extract panics if shape is malformed; see [Shape.Validate].
func Extract(raw string, shape Shape, opts ...Option) Result {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	o := options{snippetLength: DefaultSnippetLength}
	for _, opt := range opts {
		opt(&o)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{Failure: &Failure{Reason: NoJSONFound, Index: -1}}
	}

	var best *Failure
	keep := func(f *Failure) {
		if f != nil && (best == nil || f.Reason > best.Reason) {
			best = f
		}
	}

	// 1. Direct parse. A syntax error here says nothing about whether JSON
	// is present, so only shape failures are kept.
	v, f := shape.decode(text)
	if f == nil {
		return Result{Value: v}
	}
	if f.Reason != SyntaxError {
		keep(f)
	}

	// 2. Fence stripping.
	stripped := stripFences(text)
	if stripped != text && stripped != "" {
		v, f = shape.decode(stripped)
		if f == nil {
			return Result{Value: v}
		}
		if f.Reason != SyntaxError {
			keep(f)
		}
	}

	// 3. Bracket span.
	openDelim, closeDelim := shape.Kind.delimiters()
	start := strings.IndexByte(stripped, openDelim)
	end := strings.LastIndexByte(stripped, closeDelim)
	switch {
	case start >= 0 && end > start:
		span := stripped[start : end+1]
		v, f = shape.decode(span)
		if f == nil {
			return Result{Value: v}
		}
		keep(f)
		if o.repair && f.Reason == SyntaxError {
			if v, f = shape.repair(span); f == nil {
				return Result{Value: v}
			}
			keep(f)
		}
	case start >= 0 && o.repair:
		// An opening delimiter with no close usually means the model ran out
		// of tokens; jsonrepair can close the value.
		if v, f = shape.repair(stripped[start:]); f == nil {
			return Result{Value: v}
		}
		keep(f)
	}

	if best == nil {
		best = &Failure{Reason: NoJSONFound, Index: -1}
	}
	best.Snippet = utils.Prefix(raw, o.snippetLength)
	return Result{Failure: best}
}

// decode parses candidate and checks it against s, unwrapping an envelope
// first when s declares one.
func (s Shape) decode(candidate string) (Value, *Failure) {
	var v Value
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, &Failure{Reason: SyntaxError, Index: -1, Err: err}
	}
	if s.Kind == KindArray && s.Envelope != "" {
		if obj, ok := v.(map[string]any); ok {
			if inner, ok := obj[s.Envelope]; ok {
				v = inner
			}
		}
	}
	if f := s.check(v); f != nil {
		return nil, f
	}
	return v, nil
}

func (s Shape) repair(candidate string) (Value, *Failure) {
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, &Failure{Reason: SyntaxError, Index: -1, Err: err}
	}
	return s.decode(repaired)
}

// stripFences removes markdown code-fence markers, language tag first so no
// stray "json" is left behind, and trims the result.
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
