package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the semantic type shared by every value of a Series.
type Kind int

const (
	Unknown Kind = iota
	String
	Integer
	Float
	Decimal
	Date
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// DefaultDateLayouts are tried in order by ParseDates when no layout is given.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// Series is a named, homogeneous column. Nil values are nulls.
type Series struct {
	Name   string
	Kind   Kind
	Values []any
}

// NewSeries builds a Series and infers its Kind from the values.
// Mixed integer and float values are widened to float.
func NewSeries(name string, values []any) *Series {
	normalized := make([]any, len(values))
	kind := Unknown
	for i, v := range values {
		normalized[i] = normalize(v)
		kind = mergeKinds(kind, KindOf(normalized[i]))
	}
	s := &Series{Name: name, Kind: kind, Values: normalized}
	s.coerceAll()
	return s
}

// NewTypedSeries builds a Series of a known Kind, coercing values where possible.
func NewTypedSeries(name string, kind Kind, values []any) *Series {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalize(v)
	}
	s := &Series{Name: name, Kind: kind, Values: normalized}
	s.coerceAll()
	return s
}

// KindOf returns the Kind of a single normalized value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Unknown
	case string:
		return String
	case int64:
		return Integer
	case float64:
		return Float
	case decimal.Decimal:
		return Decimal
	case time.Time:
		return Date
	default:
		return String
	}
}

func (s *Series) Len() int {
	return len(s.Values)
}

func (s *Series) clone() *Series {
	values := make([]any, len(s.Values))
	copy(values, s.Values)
	return &Series{Name: s.Name, Kind: s.Kind, Values: values}
}

// ParseDates converts a text column to dates. A column that is already a
// date column is returned unchanged.
func (s *Series) ParseDates(layouts ...string) (*Series, error) {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	switch s.Kind {
	case Date, Unknown:
		out := s.clone()
		out.Kind = Date
		return out, nil
	case String:
	default:
		return nil, fmt.Errorf("column %s: cannot parse %s values as dates", s.Name, s.Kind)
	}

	out := &Series{Name: s.Name, Kind: Date, Values: make([]any, len(s.Values))}
	for i, v := range s.Values {
		if v == nil {
			continue
		}
		str := strings.TrimSpace(v.(string))
		if str == "" {
			continue
		}
		t, err := parseTime(str, layouts)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", s.Name, i, err)
		}
		out.Values[i] = t
	}
	return out, nil
}

// ToDecimal converts numeric or text values to decimals rounded to places.
func (s *Series) ToDecimal(places int32) (*Series, error) {
	out := &Series{Name: s.Name, Kind: Decimal, Values: make([]any, len(s.Values))}
	for i, v := range s.Values {
		if v == nil {
			continue
		}
		d, err := toDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", s.Name, i, err)
		}
		out.Values[i] = d.Round(places)
	}
	return out, nil
}

// ToInteger converts numeric or text values to int64. Fractional values are rounded.
func (s *Series) ToInteger() (*Series, error) {
	out := &Series{Name: s.Name, Kind: Integer, Values: make([]any, len(s.Values))}
	for i, v := range s.Values {
		if v == nil {
			continue
		}
		switch t := v.(type) {
		case int64:
			out.Values[i] = t
		case float64:
			out.Values[i] = int64(math.Round(t))
		case decimal.Decimal:
			out.Values[i] = t.Round(0).IntPart()
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", s.Name, i, err)
			}
			out.Values[i] = n
		default:
			return nil, fmt.Errorf("column %s row %d: cannot convert %T to integer", s.Name, i, v)
		}
	}
	return out, nil
}

func (s *Series) coerceAll() {
	for i, v := range s.Values {
		s.Values[i] = coerce(v, s.Kind)
	}
}

// normalize maps driver and Go scalar types onto the small set of value types a Series holds.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case bool:
		return strconv.FormatBool(t)
	case decimal.Decimal:
		return t
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		return *t
	case time.Time:
		return t
	case interface{ Float64() float64 }:
		return decimal.NewFromFloat(t.Float64())
	default:
		return fmt.Sprint(t)
	}
}

func mergeKinds(a, b Kind) Kind {
	switch {
	case a == Unknown:
		return b
	case b == Unknown || a == b:
		return a
	case isNumeric(a) && isNumeric(b):
		if a == Decimal || b == Decimal {
			return Decimal
		}
		return Float
	default:
		return String
	}
}

func isNumeric(k Kind) bool {
	return k == Integer || k == Float || k == Decimal
}

func coerce(v any, k Kind) any {
	if v == nil {
		return nil
	}
	switch k {
	case String:
		if _, ok := v.(string); !ok {
			return FormatValue(v)
		}
	case Float:
		switch t := v.(type) {
		case int64:
			return float64(t)
		case decimal.Decimal:
			return t.InexactFloat64()
		}
	case Decimal:
		if d, err := toDecimal(v); err == nil {
			return d
		}
	case Integer:
		if t, ok := v.(float64); ok && t == math.Trunc(t) {
			return int64(t)
		}
	}
	return v
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", t, err)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

func parseTime(value string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
