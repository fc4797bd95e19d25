package core

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Number is a float that may be undefined. Undefined numbers marshal to
// {"defined":false} so a consumer can never read "no data" as zero.
type Number struct {
	value   float64
	defined bool
}

var undefinedJSON = []byte(`{"defined":false}`)

// Defined wraps v. NaN and ±Inf collapse to Undefined.
func Defined(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{value: v, defined: true}
}

// Undefined returns the undefined sentinel.
func Undefined() Number {
	return Number{}
}

// Value returns the wrapped float and whether it is defined.
func (n Number) Value() (float64, bool) {
	return n.value, n.defined
}

// IsDefined reports whether n carries a value.
func (n Number) IsDefined() bool {
	return n.defined
}

// Or returns the value, or fallback when undefined.
func (n Number) Or(fallback float64) float64 {
	if !n.defined {
		return fallback
	}
	return n.value
}

// String renders the value or "undefined".
func (n Number) String() string {
	if !n.defined {
		return "undefined"
	}
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

// Format renders the value with the given precision, or "n/a".
func (n Number) Format(prec int) string {
	if !n.defined {
		return "n/a"
	}
	return strconv.FormatFloat(n.value, 'f', prec, 64)
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.defined {
		return undefinedJSON, nil
	}
	return strconv.AppendFloat(nil, n.value, 'g', -1, 64), nil
}

// UnmarshalJSON accepts a plain number, {"defined":false}, or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("empty number")
	case bytes.Equal(data, []byte("null")):
		*n = Undefined()
		return nil
	case data[0] == '{':
		var tagged struct {
			Defined bool     `json:"defined"`
			Value   *float64 `json:"value"`
		}
		if err := json.Unmarshal(data, &tagged); err != nil {
			return err
		}
		if tagged.Defined && tagged.Value != nil {
			*n = Defined(*tagged.Value)
			return nil
		}
		*n = Undefined()
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", data, err)
	}
	*n = Defined(v)
	return nil
}
