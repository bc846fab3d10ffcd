package extract

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecode is returned by [Decode] when an extracted value does not fit the
// target type, e.g. a string where T declares a number.
var ErrDecode = errors.New("extract: decode")

// Decode extracts a value of the given shape from raw and unmarshals it into
// T. An unsuccessful extraction is returned as its [*Failure], so callers can
// still inspect the reason with errors.As or errors.Is.
//
// Example usage:
//
//	type Recipe struct {
//	    Title       string `json:"title"`
//	    TimeMinutes int    `json:"time_minutes"`
//	}
//
//	recipe, err := extract.Decode[Recipe](content, extract.Object("title", "time_minutes"))
func Decode[T any](raw string, shape Shape, opts ...Option) (T, error) {
	var out T

	res := Extract(raw, shape, opts...)
	if !res.OK() {
		return out, res.Failure
	}
	if err := Into(res.Value, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Into converts an extracted value into dst, which must be a non-nil pointer.
func Into(v Value, dst any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: re-encode: %v", ErrDecode, err)
	}
	if err := json.Unmarshal(encoded, dst); err != nil {
		return fmt.Errorf("%w into %T: %v", ErrDecode, dst, err)
	}
	return nil
}
