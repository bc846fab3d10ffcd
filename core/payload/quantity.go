package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Quantity holds an ingredient amount that models emit either as a number
// (500) or as free text ("1/2", "secukupnya").
type Quantity string

// UnmarshalJSON accepts a JSON number, string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("quantity: want number or string, got %s", data)
		}
		*q = Quantity(n.String())
	}
	return nil
}

// MarshalJSON writes numeric quantities as numbers and the rest as strings.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if _, ok := q.Float(); ok && json.Valid([]byte(q)) {
		return []byte(q), nil
	}
	return json.Marshal(string(q))
}

// Float returns the quantity as a number when it is one.
func (q Quantity) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(q), 64)
	return f, err == nil
}
