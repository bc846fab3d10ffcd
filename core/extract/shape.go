package extract

import (
	"errors"
	"fmt"
)

// Kind is the top-level JSON kind a caller expects.
type Kind int

const (
	// KindObject expects a JSON object, delimited by '{' and '}'.
	KindObject Kind = iota + 1
	// KindArray expects a JSON array, delimited by '[' and ']'.
	KindArray
)

// String returns "object" or "array".
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) delimiters() (openDelim, closeDelim byte) {
	if k == KindArray {
		return '[', ']'
	}
	return '{', '}'
}

// Shape describes the value a caller expects back from a model.
//
// Required lists keys that must be present at the top level of an object;
// their types are not checked. Elem, for arrays only, is applied to every
// element. Envelope, for arrays only, names a key under which the array may
// arrive wrapped in an object, e.g. {"plan": [...]}.
type Shape struct {
	Kind     Kind
	Required []string
	Elem     *Shape
	Envelope string
}

// Object returns an object shape requiring the given top-level keys.
func Object(required ...string) Shape {
	return Shape{Kind: KindObject, Required: required}
}

// Array returns an array shape with no element constraint.
func Array() Shape {
	return Shape{Kind: KindArray}
}

// ArrayOf returns an array shape whose elements must each satisfy elem.
func ArrayOf(elem Shape) Shape {
	return Shape{Kind: KindArray, Elem: &elem}
}

// InEnvelope returns a copy of an array shape that also accepts the array
// wrapped in an object under key.
func (s Shape) InEnvelope(key string) Shape {
	s.Envelope = key
	return s
}

// Validate reports whether s is a well-formed descriptor.
func (s Shape) Validate() error {
	return s.validate(0)
}

func (s Shape) validate(depth int) error {
	switch s.Kind {
	case KindObject:
		if s.Elem != nil {
			return errors.New("extract: object shape cannot have an element shape")
		}
		if s.Envelope != "" {
			return errors.New("extract: object shape cannot have an envelope")
		}
		for i, name := range s.Required {
			if name == "" {
				return fmt.Errorf("extract: required field %d is empty", i)
			}
		}
	case KindArray:
		if len(s.Required) > 0 {
			return errors.New("extract: array shape cannot have required fields")
		}
		if depth > 0 && s.Envelope != "" {
			return errors.New("extract: element shapes cannot have an envelope")
		}
		if s.Elem != nil {
			if depth > 0 {
				return errors.New("extract: element shapes nest only one level")
			}
			if err := s.Elem.validate(depth + 1); err != nil {
				return fmt.Errorf("element: %w", err)
			}
		}
	default:
		return fmt.Errorf("extract: unknown shape kind %d", int(s.Kind))
	}
	return nil
}

// check verifies that v, already decoded, conforms to s. It returns nil or
// a failure without snippet; the caller fills that in.
func (s Shape) check(v Value) *Failure {
	switch s.Kind {
	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return &Failure{Reason: ShapeMismatch, Index: -1, Err: fmt.Errorf("got %s, want object", kindOf(v))}
		}
		if missing := missingKeys(obj, s.Required); len(missing) > 0 {
			return &Failure{Reason: MissingRequiredFields, Missing: missing, Index: -1}
		}
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return &Failure{Reason: ShapeMismatch, Index: -1, Err: fmt.Errorf("got %s, want array", kindOf(v))}
		}
		if s.Elem == nil {
			return nil
		}
		for i, elem := range arr {
			if f := s.Elem.check(elem); f != nil {
				f.Index = i
				return f
			}
		}
	}
	return nil
}

func missingKeys(obj map[string]any, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := obj[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func kindOf(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
