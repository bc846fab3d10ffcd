package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Value is a decoded JSON value as produced by encoding/json: nil, bool,
// float64, string, []any or map[string]any.
type Value = any

// Reason classifies why an extraction failed.
type Reason int

const (
	// NoJSONFound means no candidate parsed and no bracket span of the
	// expected kind exists in the text.
	NoJSONFound Reason = iota + 1
	// SyntaxError means a bracket span was located but did not parse.
	SyntaxError
	// ShapeMismatch means a value parsed but its kind is wrong, at the top
	// level or for an array element.
	ShapeMismatch
	// MissingRequiredFields means a value of the right kind parsed but lacks
	// required keys, at the top level or in an array element.
	MissingRequiredFields
)

var reasonNames = map[Reason]string{
	NoJSONFound:           "no_json_found",
	SyntaxError:           "syntax_error",
	ShapeMismatch:         "shape_mismatch",
	MissingRequiredFields: "missing_required_fields",
}

// String returns a stable snake_case code suitable for log fields and metric
// labels.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason_%d", int(r))
}

// Sentinel errors matched by [Failure.Is], one per [Reason].
var (
	ErrNoJSONFound   = errors.New("no JSON found")
	ErrSyntax        = errors.New("JSON syntax error")
	ErrShapeMismatch = errors.New("JSON shape mismatch")
	ErrMissingFields = errors.New("missing required fields")
)

func (r Reason) sentinel() error {
	switch r {
	case NoJSONFound:
		return ErrNoJSONFound
	case SyntaxError:
		return ErrSyntax
	case ShapeMismatch:
		return ErrShapeMismatch
	case MissingRequiredFields:
		return ErrMissingFields
	}
	return nil
}

// Failure describes an unsuccessful extraction. Snippet is a bounded prefix
// of the raw text, kept for diagnostics only.
type Failure struct {
	Reason  Reason
	Snippet string
	// Missing lists the absent keys for MissingRequiredFields.
	Missing []string
	// Index is the offending array element, or -1 for the top level.
	Index int
	// Err is the underlying parse or kind error, if any.
	Err error
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString("extract: ")
	if sentinel := f.Reason.sentinel(); sentinel != nil {
		b.WriteString(sentinel.Error())
	} else {
		b.WriteString(f.Reason.String())
	}
	if f.Index >= 0 {
		fmt.Fprintf(&b, " in element %d", f.Index)
	}
	if len(f.Missing) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(f.Missing, ", "))
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying parse or kind error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is the sentinel for f's reason.
func (f *Failure) Is(target error) bool {
	return target != nil && target == f.Reason.sentinel()
}

// Result is the outcome of [Extract]. Exactly one of Value and Failure is
// meaningful: Value is nil whenever Failure is set. A successful Value may
// itself be an empty array.
type Result struct {
	Value   Value
	Failure *Failure
}

// OK reports whether the extraction succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Object returns the value as a JSON object when the result is a success
// of object kind.
func (r Result) Object() (map[string]any, bool) {
	obj, ok := r.Value.(map[string]any)
	return obj, ok && r.OK()
}

// Array returns the value as a JSON array when the result is a success of
// array kind.
func (r Result) Array() ([]any, bool) {
	arr, ok := r.Value.([]any)
	return arr, ok && r.OK()
}
