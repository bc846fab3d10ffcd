package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

var (
	pantryItem  = Object("name", "quantity", "category", "expiry_date")
	pantryItems = ArrayOf(pantryItem)
	recipe      = Object("title", "ingredients", "steps", "time_minutes")
)

func mustUnmarshal(t *testing.T, s string) Value {
	t.Helper()
	var v Value
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return v
}

// TestExtract_Scenarios covers the reference inputs the extractor was built
// against, one row per handler situation.
func TestExtract_Scenarios(t *testing.T) {
	egg := `{"name":"Egg","quantity":"12 pcs","category":"Dairy","expiry_date":"2024-01-01"}`

	tests := []struct {
		name        string
		input       string
		shape       Shape
		want        string // JSON of the expected value; empty when a failure is expected
		wantReason  Reason
		wantSnippet *string
	}{
		{
			name:  "prose and fenced object",
			input: "Sure! Here's the JSON:\n```json\n" + egg + "\n```",
			shape: pantryItem,
			want:  egg,
		},
		{
			name:  "empty array is a success",
			input: "[]",
			shape: pantryItems,
			want:  "[]",
		},
		{
			name:        "refusal without any JSON",
			input:       "I cannot see any food in this image.",
			shape:       pantryItems,
			wantReason:  NoJSONFound,
			wantSnippet: ptr("I cannot see any food in this image."),
		},
		{
			name:       "object missing required fields",
			input:      `{"title": "Soup"}`,
			shape:      Object("title", "ingredients", "steps"),
			wantReason: MissingRequiredFields,
		},
		{
			name:       "two top-level objects defeat the span heuristic",
			input:      `Here: {"a":1} and also {"b":2}`,
			shape:      Object(),
			wantReason: SyntaxError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input, tt.shape)
			if tt.want != "" {
				if !res.OK() {
					t.Fatalf("Extract() failed: %v", res.Failure)
				}
				if want := mustUnmarshal(t, tt.want); !reflect.DeepEqual(res.Value, want) {
					t.Errorf("Extract() = %#v, want %#v", res.Value, want)
				}
				return
			}
			if res.OK() {
				t.Fatalf("Extract() succeeded with %#v, want %v", res.Value, tt.wantReason)
			}
			if res.Value != nil {
				t.Errorf("failed Result carries a value: %#v", res.Value)
			}
			if res.Failure.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", res.Failure.Reason, tt.wantReason)
			}
			if tt.wantSnippet != nil && res.Failure.Snippet != *tt.wantSnippet {
				t.Errorf("Snippet = %q, want %q", res.Failure.Snippet, *tt.wantSnippet)
			}
		})
	}
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		shape       Shape
		wantReason  Reason
		wantMissing []string
		wantIndex   int
	}{
		{
			name:       "empty input",
			input:      "",
			shape:      recipe,
			wantReason: NoJSONFound,
			wantIndex:  -1,
		},
		{
			name:       "whitespace only",
			input:      " \n\t  ",
			shape:      pantryItems,
			wantReason: NoJSONFound,
			wantIndex:  -1,
		},
		{
			name:       "opening brace without a close",
			input:      `{"title": "Soup"`,
			shape:      recipe,
			wantReason: NoJSONFound,
			wantIndex:  -1,
		},
		{
			name:       "close before open",
			input:      `} nothing here {`,
			shape:      Object(),
			wantReason: NoJSONFound,
			wantIndex:  -1,
		},
		{
			name:       "trailing comma is a syntax error without repair",
			input:      `{"title": "Soup",}`,
			shape:      Object("title"),
			wantReason: SyntaxError,
			wantIndex:  -1,
		},
		{
			name:       "number where an object is expected",
			input:      `42`,
			shape:      Object(),
			wantReason: ShapeMismatch,
			wantIndex:  -1,
		},
		{
			name:       "array of scalars where an object is expected",
			input:      `[1, 2, 3]`,
			shape:      Object(),
			wantReason: ShapeMismatch,
			wantIndex:  -1,
		},
		{
			name:       "object where an array is expected",
			input:      `{"name": "Egg"}`,
			shape:      pantryItems,
			wantReason: ShapeMismatch,
			wantIndex:  -1,
		},
		{
			name:        "one element missing fields fails the whole array",
			input:       `[{"name":"Egg","quantity":"12","category":"Dairy","expiry_date":"2024-01-01"},{"name":"Milk"}]`,
			shape:       pantryItems,
			wantReason:  MissingRequiredFields,
			wantMissing: []string{"quantity", "category", "expiry_date"},
			wantIndex:   1,
		},
		{
			name:       "element of the wrong kind",
			input:      `[{"name":"Egg","quantity":"12","category":"Dairy","expiry_date":"2024-01-01"}, "Milk"]`,
			shape:      pantryItems,
			wantReason: ShapeMismatch,
			wantIndex:  1,
		},
		{
			name:        "fenced object missing fields",
			input:       "```json\n{\"title\": \"Soup\"}\n```",
			shape:       recipe,
			wantReason:  MissingRequiredFields,
			wantMissing: []string{"ingredients", "steps", "time_minutes"},
			wantIndex:   -1,
		},
		{
			name:       "envelope key absent",
			input:      `{"meals": 21}`,
			shape:      pantryItems.InEnvelope("items"),
			wantReason: ShapeMismatch,
			wantIndex:  -1,
		},
		{
			name:       "envelope holds an object instead of an array",
			input:      `{"items": {"name": "Egg"}}`,
			shape:      pantryItems.InEnvelope("items"),
			wantReason: ShapeMismatch,
			wantIndex:  -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input, tt.shape)
			if res.OK() {
				t.Fatalf("Extract() succeeded with %#v", res.Value)
			}
			f := res.Failure
			if f.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v (%v)", f.Reason, tt.wantReason, f)
			}
			if !reflect.DeepEqual(f.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", f.Missing, tt.wantMissing)
			}
			if f.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", f.Index, tt.wantIndex)
			}
		})
	}
}

func TestExtract_Successes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape Shape
		want  string
	}{
		{
			name:  "plain object",
			input: `{"title":"Soup","ingredients":[],"steps":[],"time_minutes":20}`,
			shape: recipe,
			want:  `{"title":"Soup","ingredients":[],"steps":[],"time_minutes":20}`,
		},
		{
			name:  "fenced array without prose",
			input: "```json\n[1, 2, 3]\n```",
			shape: Array(),
			want:  `[1,2,3]`,
		},
		{
			name:  "bare fence without language tag",
			input: "```\n{\"ok\": true}\n```",
			shape: Object("ok"),
			want:  `{"ok":true}`,
		},
		{
			name:  "required field present with null value",
			input: `{"title": null}`,
			shape: Object("title"),
			want:  `{"title":null}`,
		},
		{
			name:  "no type coercion, only presence",
			input: `{"time_minutes": "twenty"}`,
			shape: Object("time_minutes"),
			want:  `{"time_minutes":"twenty"}`,
		},
		{
			name:  "nested array picked out of an object",
			input: `Result: {"a": [1, 2]} thanks`,
			shape: Array(),
			want:  `[1,2]`,
		},
		{
			name:  "first element of a single-element array",
			input: `[{"title": "Soup"}]`,
			shape: Object("title"),
			want:  `{"title":"Soup"}`,
		},
		{
			name:  "envelope unwrapped",
			input: `{"plan": [{"recipe_name": "Oatmeal", "description": "Warm"}]}`,
			shape: ArrayOf(Object("recipe_name", "description")).InEnvelope("plan"),
			want:  `[{"recipe_name":"Oatmeal","description":"Warm"}]`,
		},
		{
			name:  "envelope ignored when the array arrives bare",
			input: `[{"recipe_name": "Oatmeal", "description": "Warm"}]`,
			shape: ArrayOf(Object("recipe_name", "description")).InEnvelope("plan"),
			want:  `[{"recipe_name":"Oatmeal","description":"Warm"}]`,
		},
		{
			name:  "unicode and escaped braces inside strings",
			input: "Voilà:\n{\"title\": \"Nasi goreng {spicy} 🍳\"}\nSelamat makan!",
			shape: Object("title"),
			want:  `{"title":"Nasi goreng {spicy} 🍳"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input, tt.shape)
			if !res.OK() {
				t.Fatalf("Extract() failed: %v", res.Failure)
			}
			if want := mustUnmarshal(t, tt.want); !reflect.DeepEqual(res.Value, want) {
				t.Errorf("Extract() = %#v, want %#v", res.Value, want)
			}
		})
	}
}

// TestExtract_RoundTrip checks that valid JSON of the requested shape comes
// back deep-equal to a plain decode, with or without fences and prose.
func TestExtract_RoundTrip(t *testing.T) {
	values := []struct {
		json  string
		shape Shape
	}{
		{`{}`, Object()},
		{`{"a":1,"b":[true,false,null],"c":{"d":"e"}}`, Object("a", "b", "c")},
		{`[]`, Array()},
		{`[{"name":"Rice","quantity":"1 kg","category":"Grains","expiry_date":"2025-06-01"}]`, pantryItems},
		{`[[1,2],[3,4]]`, ArrayOf(Array())},
		{`{"title":"Soto","ingredients":[{"item":"ayam","quantity":500,"unit":"g"}],"steps":[{"step":1,"instruction":"Rebus"}],"time_minutes":45}`, recipe},
	}
	wrappers := []struct {
		name string
		wrap func(string) string
	}{
		{"bare", func(s string) string { return s }},
		{"whitespace", func(s string) string { return "\n\t  " + s + "  \n" }},
		{"json fence", func(s string) string { return "```json\n" + s + "\n```" }},
		{"plain fence", func(s string) string { return "```\n" + s + "\n```" }},
		{"prose", func(s string) string {
			return "Here is the result you asked for:\n" + s + "\nLet me know if you need more."
		}},
		{"prose and fence", func(s string) string {
			return "Sure!\n```json\n" + s + "\n```\nEnjoy your meal."
		}},
	}

	for _, v := range values {
		want := mustUnmarshal(t, v.json)
		for _, w := range wrappers {
			t.Run(w.name+" "+v.json, func(t *testing.T) {
				res := Extract(w.wrap(v.json), v.shape)
				if !res.OK() {
					t.Fatalf("Extract() failed: %v", res.Failure)
				}
				if !reflect.DeepEqual(res.Value, want) {
					t.Errorf("Extract() = %#v, want %#v", res.Value, want)
				}
			})
		}
	}
}

func TestExtract_NoDelimitersMeansNoJSON(t *testing.T) {
	inputs := []string{
		"No food detected.",
		"The image shows a kitchen counter, nothing edible.",
		"```\nnothing\n```",
		"```json```",
	}
	for _, shape := range []Shape{Object(), recipe, Array(), pantryItems} {
		for _, input := range inputs {
			res := Extract(input, shape)
			if res.OK() || res.Failure.Reason != NoJSONFound {
				t.Errorf("Extract(%q, %v) = %+v, want NoJSONFound", input, shape.Kind, res)
			}
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	input := "```json\n[{\"name\":\"Tofu\",\"quantity\":\"2 blocks\",\"category\":\"Other\",\"expiry_date\":\"2025-02-02\"}]\n```"

	first := Extract(input, pantryItems)
	second := Extract(input, pantryItems)
	if !first.OK() || !second.OK() {
		t.Fatalf("Extract() failed: %v / %v", first.Failure, second.Failure)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract() not deterministic: %#v vs %#v", first, second)
	}
}

func TestExtract_SnippetBounded(t *testing.T) {
	long := strings.Repeat("no json here, only words. ", 40)

	res := Extract(long, Object())
	if res.OK() {
		t.Fatal("Extract() succeeded on prose")
	}
	if got := utf8.RuneCountInString(res.Failure.Snippet); got != DefaultSnippetLength {
		t.Errorf("snippet has %d runes, want %d", got, DefaultSnippetLength)
	}
	if !strings.HasPrefix(long, res.Failure.Snippet) {
		t.Errorf("snippet is not a prefix of the input: %q", res.Failure.Snippet)
	}

	res = Extract(long, Object(), WithSnippetLength(10))
	if res.Failure.Snippet != long[:10] {
		t.Errorf("snippet = %q, want %q", res.Failure.Snippet, long[:10])
	}

	res = Extract(long, Object(), WithSnippetLength(0))
	if res.Failure.Snippet != "" {
		t.Errorf("snippet = %q, want empty", res.Failure.Snippet)
	}
}

func TestExtract_Repair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape Shape
		want  string
	}{
		{
			name:  "trailing comma",
			input: `Here you go: {"title": "Soup", "time_minutes": 10,}`,
			shape: Object("title", "time_minutes"),
			want:  `{"title":"Soup","time_minutes":10}`,
		},
		{
			name:  "single quotes",
			input: `{'title': 'Soup'}`,
			shape: Object("title"),
			want:  `{"title":"Soup"}`,
		},
		{
			name:  "truncated output",
			input: `Sure: {"title": "Soup", "steps": ["boil"`,
			shape: Object("title", "steps"),
			want:  `{"title":"Soup","steps":["boil"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := Extract(tt.input, tt.shape); res.OK() {
				t.Fatalf("Extract() without repair succeeded: %#v", res.Value)
			}
			res := Extract(tt.input, tt.shape, WithRepair())
			if !res.OK() {
				t.Fatalf("Extract(WithRepair) failed: %v", res.Failure)
			}
			if want := mustUnmarshal(t, tt.want); !reflect.DeepEqual(res.Value, want) {
				t.Errorf("Extract() = %#v, want %#v", res.Value, want)
			}
		})
	}
}

func TestExtract_RepairStillValidatesShape(t *testing.T) {
	res := Extract(`{'title': 'Soup',}`, recipe, WithRepair())
	if res.OK() {
		t.Fatalf("Extract() succeeded with %#v", res.Value)
	}
	if res.Failure.Reason != MissingRequiredFields {
		t.Errorf("Reason = %v, want %v", res.Failure.Reason, MissingRequiredFields)
	}
}

func TestExtract_MalformedShapePanics(t *testing.T) {
	shapes := map[string]Shape{
		"zero value":              {},
		"unknown kind":            {Kind: Kind(9)},
		"object with elem":        {Kind: KindObject, Elem: &Shape{Kind: KindObject}},
		"object with envelope":    {Kind: KindObject, Envelope: "items"},
		"array with required":     {Kind: KindArray, Required: []string{"name"}},
		"empty required name":     Object("name", ""),
		"two levels of elements":  ArrayOf(ArrayOf(Object())),
		"element with envelope":   ArrayOf(Array().InEnvelope("x")),
		"element of unknown kind": {Kind: KindArray, Elem: &Shape{}},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			if err := shape.Validate(); err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			defer func() {
				if recover() == nil {
					t.Error("Extract() did not panic")
				}
			}()
			Extract(`{}`, shape)
		})
	}
}

func TestShape_ValidateAccepts(t *testing.T) {
	shapes := map[string]Shape{
		"object without required": Object(),
		"object with required":    Object("title"),
		"array without element":   Array(),
		"array of objects":        ArrayOf(Object("name")),
		"array of arrays":         ArrayOf(Array()),
		"array in envelope":       ArrayOf(Object("name")).InEnvelope("items"),
		"bare array in envelope":  Array().InEnvelope("plan"),
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			if err := shape.Validate(); err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestFailure_Errors(t *testing.T) {
	res := Extract(`{"title": "Soup"}`, Object("title", "ingredients", "steps"))

	err := res.Err()
	if err == nil {
		t.Fatal("Err() = nil")
	}
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("errors.Is(err, ErrMissingFields) = false for %v", err)
	}
	if errors.Is(err, ErrSyntax) {
		t.Errorf("errors.Is(err, ErrSyntax) = true for %v", err)
	}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("errors.As(*Failure) = false")
	}
	if want := "extract: missing required fields [ingredients, steps]"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	res = Extract(`Here: {"a":1} and also {"b":2}`, Object())
	var syntaxErr *json.SyntaxError
	if !errors.As(res.Err(), &syntaxErr) {
		t.Errorf("syntax failure does not unwrap to *json.SyntaxError: %v", res.Err())
	}
	if !errors.Is(res.Err(), ErrSyntax) {
		t.Errorf("errors.Is(err, ErrSyntax) = false for %v", res.Err())
	}

	res = Extract(`[{"name":"Milk"}]`, pantryItems)
	if !strings.Contains(res.Err().Error(), "in element 0") {
		t.Errorf("Error() = %q, want element index", res.Err().Error())
	}
}

func TestResult_Accessors(t *testing.T) {
	obj := Extract(`{"a": 1}`, Object("a"))
	if m, ok := obj.Object(); !ok || m["a"] != float64(1) {
		t.Errorf("Object() = %v, %v", m, ok)
	}
	if _, ok := obj.Array(); ok {
		t.Error("Array() ok on an object result")
	}
	if obj.Err() != nil {
		t.Errorf("Err() = %v on success", obj.Err())
	}

	arr := Extract(`[]`, Array())
	if a, ok := arr.Array(); !ok || len(a) != 0 {
		t.Errorf("Array() = %v, %v", a, ok)
	}

	failed := Extract(`nothing`, Object())
	if _, ok := failed.Object(); ok {
		t.Error("Object() ok on a failure")
	}
}

func TestReason_String(t *testing.T) {
	tests := map[Reason]string{
		NoJSONFound:           "no_json_found",
		SyntaxError:           "syntax_error",
		ShapeMismatch:         "shape_mismatch",
		MissingRequiredFields: "missing_required_fields",
		Reason(42):            "reason_42",
	}
	for r, want := range tests {
		if got := r.String(); got != want {
			t.Errorf("Reason(%d).String() = %q, want %q", int(r), got, want)
		}
	}
}

// TestExtract_Concurrent shares one shape across goroutines; run with -race.
func TestExtract_Concurrent(t *testing.T) {
	input := "```json\n[{\"name\":\"Egg\",\"quantity\":\"6\",\"category\":\"Dairy\",\"expiry_date\":\"2025-01-01\"}]\n```"

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := Extract(input, pantryItems); !res.OK() {
				errs <- res.Err()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
