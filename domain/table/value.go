package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
)

// ParseKind maps a loose type name onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "float", "int", "integer":
		return KindNumeric, nil
	case "categorical", "category", "text", "string":
		return KindCategorical, nil
	case "datetime", "date", "timestamp", "time":
		return KindDatetime, nil
	case "boolean", "bool":
		return KindBoolean, nil
	}
	return "", fmt.Errorf("unknown column kind %q", s)
}

// IsGroupable reports whether values of this kind act as category labels.
func (k Kind) IsGroupable() bool {
	return k == KindCategorical || k == KindBoolean || k == KindDatetime
}

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
	ts   time.Time
	b    bool
}

// Missing returns the missing value.
func Missing() Value {
	return Value{}
}

// Float creates a numeric value. NaN and ±Inf are stored as missing.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumeric, num: f}
}

// Text creates a categorical value. The empty string is missing.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindCategorical, str: s}
}

// Time creates a datetime value. The zero time is missing.
func Time(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{kind: KindDatetime, ts: t}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.kind == ""
}

// Kind returns the value's kind, or "" when missing.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumeric
}

// Text returns the categorical payload.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindCategorical
}

// Time returns the datetime payload.
func (v Value) Time() (time.Time, bool) {
	return v.ts, v.kind == KindDatetime
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBoolean
}

// Label is the canonical string form of the raw value, used as the grouping
// key and axis label. Missing values have an empty label.
func (v Value) Label() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindCategorical:
		return v.str
	case KindDatetime:
		if v.ts.Hour() == 0 && v.ts.Minute() == 0 && v.ts.Second() == 0 && v.ts.Nanosecond() == 0 {
			return v.ts.Format("2006-01-02")
		}
		return v.ts.Format(time.RFC3339)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.IsMissing() {
		return "<missing>"
	}
	return v.Label()
}

// Compare orders two values of the same kind. Missing sorts last; values of
// different kinds fall back to comparing labels.
func Compare(a, b Value) int {
	switch {
	case a.IsMissing() && b.IsMissing():
		return 0
	case a.IsMissing():
		return 1
	case b.IsMissing():
		return -1
	case a.kind != b.kind:
		return strings.Compare(a.Label(), b.Label())
	}

	switch a.kind {
	case KindNumeric:
		return compareFloat(a.num, b.num)
	case KindDatetime:
		return a.ts.Compare(b.ts)
	case KindBoolean:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(a.str, b.str)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
