package loader

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"datalens/domain/table"
)

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of present values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // share that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // share that must parse as timestamps
	NormalizeStrings   bool    `json:"normalize_strings"`   // collapse whitespace in categorical text
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
		NormalizeStrings:   true,
	}
}

// missingTokens are cell spellings read as missing regardless of column kind.
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
	"nil":  {},
	"-":    {},
	"#n/a": {},
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// TypeCoercer infers a column kind from raw cells and converts cells to
// typed values.
type TypeCoercer struct {
	config CoercionConfig
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int        `json:"total_count"`
	ValidCount      int        `json:"valid_count"`
	NumericCount    int        `json:"numeric_count"`
	BooleanCount    int        `json:"boolean_count"`
	TimestampCount  int        `json:"timestamp_count"`
	RecommendedKind table.Kind `json:"recommended_kind"`
}

// IsMissing reports whether a raw cell should be read as missing.
func IsMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Analyze counts how many present cells parse as each kind and picks the
// most restrictive kind that clears its threshold. A column with no present
// cells is categorical.
func (c *TypeCoercer) Analyze(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}
	for _, s := range raw {
		if IsMissing(s) {
			continue
		}
		analysis.ValidCount++
		if _, ok := parseNumeric(s); ok {
			analysis.NumericCount++
		}
		if _, ok := parseBoolean(s); ok {
			analysis.BooleanCount++
		}
		if _, ok := parseTimestamp(s); ok {
			analysis.TimestampCount++
		}
	}
	analysis.RecommendedKind = c.recommend(analysis)
	return analysis
}

func (c *TypeCoercer) recommend(a TypeAnalysis) table.Kind {
	if a.ValidCount == 0 {
		return table.KindCategorical
	}
	ratio := func(n int) float64 { return float64(n) / float64(a.ValidCount) }

	// A 0/1 column parses as both; it stays numeric unless every cell is a
	// word-form boolean.
	if ratio(a.NumericCount) >= c.config.NumericThreshold {
		return table.KindNumeric
	}
	if ratio(a.BooleanCount) >= c.config.BooleanThreshold {
		return table.KindBoolean
	}
	if ratio(a.TimestampCount) >= c.config.TimestampThreshold {
		return table.KindDatetime
	}
	return table.KindCategorical
}

// Coerce converts one raw cell to a value of the given kind. Cells that do
// not parse as the column kind become missing.
func (c *TypeCoercer) Coerce(raw string, kind table.Kind) table.Value {
	if IsMissing(raw) {
		return table.Missing()
	}
	switch kind {
	case table.KindNumeric:
		if f, ok := parseNumeric(raw); ok {
			return table.Float(f)
		}
	case table.KindBoolean:
		if b, ok := parseBoolean(raw); ok {
			return table.Bool(b)
		}
	case table.KindDatetime:
		if t, ok := parseTimestamp(raw); ok {
			return table.Time(t)
		}
	case table.KindCategorical:
		return table.Text(c.normalizeString(raw))
	}
	return table.Missing()
}

// parseNumeric accepts currency symbols, percent signs, parenthesised
// negatives and European decimal commas.
func parseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(cleanVal, ",")
		periodIdx := strings.LastIndex(cleanVal, ".")
		if commaIdx > periodIdx && isDigits(cleanVal[commaIdx+1:]) {
			// 1.234,56 or 1 234,56
			cleanVal = strings.NewReplacer(".", "", " ", "").Replace(cleanVal)
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.NewReplacer(",", "", " ", "").Replace(cleanVal)
		}
	case hasComma:
		// A lone group of exactly three digits after the last comma is a
		// thousands separator; anything else is a decimal comma.
		parts := strings.Split(cleanVal, ",")
		if len(parts[len(parts)-1]) == 3 && allDigitGroups(parts) {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else if len(parts) == 2 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			return 0, false
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func parseBoolean(strVal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	}
	return false, false
}

func parseTimestamp(strVal string) (time.Time, bool) {
	s := strings.TrimSpace(strVal)
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalizeString trims, collapses internal whitespace and drops control
// characters. Case is preserved so labels read back as written.
func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.TrimSpace(s)
	if !c.config.NormalizeStrings {
		return s
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allDigitGroups(parts []string) bool {
	for i, p := range parts {
		if i == 0 {
			p = strings.TrimPrefix(strings.TrimPrefix(p, "-"), "+")
			if p == "" || len(p) > 3 || !isDigits(p) {
				return false
			}
			continue
		}
		if len(p) != 3 || !isDigits(p) {
			return false
		}
	}
	return true
}
