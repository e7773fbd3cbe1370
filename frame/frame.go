// Package frame implements the in-memory tabular structure passed between the
// extract, transform and load stages: an ordered list of named, typed columns
// that all share one row count.
package frame

import (
	"database/sql"
	"fmt"
	"strings"
)

type Frame struct {
	series []*Series
}

// New builds a Frame from columns of equal length with unique names.
func New(series ...*Series) (*Frame, error) {
	seen := make(map[string]bool, len(series))
	for i, s := range series {
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate column name %q", s.Name)
		}
		seen[s.Name] = true
		if i > 0 && s.Len() != series[0].Len() {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", s.Name, s.Len(), series[0].Len())
		}
	}
	return &Frame{series: series}, nil
}

// FromRecords builds a Frame from row-major records, inferring each column's Kind.
func FromRecords(names []string, rows [][]any) (*Frame, error) {
	columns := make([][]any, len(names))
	for i := range columns {
		columns[i] = make([]any, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", r, len(row), len(names))
		}
		for c, v := range row {
			columns[c][r] = v
		}
	}

	series := make([]*Series, len(names))
	for i, name := range names {
		series[i] = NewSeries(name, columns[i])
	}
	return New(series...)
}

// FromSQLRows drains rows into a Frame. Column kinds come from the driver's
// database type names and fall back to inference from the values.
func FromSQLRows(rows *sql.Rows) (*Frame, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	var records [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	series := make([]*Series, len(columns))
	for c, name := range columns {
		values := make([]any, len(records))
		for r, record := range records {
			values[r] = record[c]
		}
		if kind := KindForDatabaseType(types[c].DatabaseTypeName()); kind != Unknown {
			series[c] = NewTypedSeries(name, kind, values)
		} else {
			series[c] = NewSeries(name, values)
		}
	}
	return New(series...)
}

// KindForDatabaseType maps a driver type name (DuckDB or Postgres spelling) to a Kind.
func KindForDatabaseType(name string) Kind {
	name = strings.ToUpper(name)
	switch {
	case name == "DATE" || strings.HasPrefix(name, "TIMESTAMP"):
		return Date
	case name == "BIGINT" || name == "INTEGER" || name == "SMALLINT" || name == "TINYINT" ||
		name == "HUGEINT" || name == "INT8" || name == "INT4" || name == "INT2":
		return Integer
	case name == "DOUBLE" || name == "FLOAT" || name == "REAL" || name == "FLOAT8" || name == "FLOAT4":
		return Float
	case strings.HasPrefix(name, "DECIMAL") || strings.HasPrefix(name, "NUMERIC"):
		return Decimal
	case name == "VARCHAR" || name == "TEXT" || name == "BPCHAR":
		return String
	default:
		return Unknown
	}
}

// Len returns the number of rows. A nil Frame has no rows.
func (f *Frame) Len() int {
	if f == nil || len(f.series) == 0 {
		return 0
	}
	return f.series[0].Len()
}

func (f *Frame) Width() int {
	if f == nil {
		return 0
	}
	return len(f.series)
}

func (f *Frame) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, len(f.series))
	for i, s := range f.series {
		names[i] = s.Name
	}
	return names
}

// Series returns the columns in order. The slice is a copy; the columns are shared.
func (f *Frame) Series() []*Series {
	out := make([]*Series, len(f.series))
	copy(out, f.series)
	return out
}

func (f *Frame) Column(name string) (*Series, bool) {
	if f == nil {
		return nil, false
	}
	for _, s := range f.series {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func (f *Frame) Has(name string) bool {
	_, ok := f.Column(name)
	return ok
}

// Row returns the values of row i in column order.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.series))
	for c, s := range f.series {
		row[c] = s.Values[i]
	}
	return row
}

// Slice returns rows [start, end) as a new Frame sharing no value storage with f.
func (f *Frame) Slice(start, end int) *Frame {
	if start < 0 {
		start = 0
	}
	if end > f.Len() {
		end = f.Len()
	}
	if start > end {
		start = end
	}
	out := make([]*Series, len(f.series))
	for i, s := range f.series {
		values := make([]any, end-start)
		copy(values, s.Values[start:end])
		out[i] = &Series{Name: s.Name, Kind: s.Kind, Values: values}
	}
	return &Frame{series: out}
}

func (f *Frame) Clone() *Frame {
	out := make([]*Series, len(f.series))
	for i, s := range f.series {
		out[i] = s.clone()
	}
	return &Frame{series: out}
}

// Rename returns a copy with columns renamed by mapping. Names not in the
// frame are ignored.
func (f *Frame) Rename(mapping map[string]string) *Frame {
	out := f.Clone()
	for _, s := range out.series {
		if to, ok := mapping[s.Name]; ok {
			s.Name = to
		}
	}
	return out
}

// RenameFold renames columns that equal one of reference ignoring case to the
// reference spelling.
func (f *Frame) RenameFold(reference []string) *Frame {
	mapping := make(map[string]string)
	for _, s := range f.series {
		for _, ref := range reference {
			if s.Name != ref && strings.EqualFold(s.Name, ref) {
				mapping[s.Name] = ref
			}
		}
	}
	return f.Rename(mapping)
}

// Drop removes a column and fails when it does not exist.
func (f *Frame) Drop(name string) (*Frame, error) {
	if !f.Has(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return f.DropIfExists(name), nil
}

// DropIfExists removes a column when present and is a no-op otherwise.
func (f *Frame) DropIfExists(name string) *Frame {
	out := &Frame{}
	for _, s := range f.series {
		if s.Name != name {
			out.series = append(out.series, s.clone())
		}
	}
	return out
}

// Select returns the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := &Frame{series: make([]*Series, 0, len(names))}
	for _, name := range names {
		s, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		out.series = append(out.series, s.clone())
	}
	return out, nil
}

// WithSeries returns a copy with s replacing the column of the same name, or
// appended when no such column exists.
func (f *Frame) WithSeries(s *Series) (*Frame, error) {
	if len(f.series) > 0 && s.Len() != f.Len() {
		return nil, fmt.Errorf("column %s has %d rows, expected %d", s.Name, s.Len(), f.Len())
	}
	out := f.Clone()
	for i, existing := range out.series {
		if existing.Name == s.Name {
			out.series[i] = s
			return out, nil
		}
	}
	out.series = append(out.series, s)
	return out, nil
}

// WithConstant returns a copy with a column holding v on every row.
func (f *Frame) WithConstant(name string, v any) *Frame {
	values := make([]any, f.Len())
	for i := range values {
		values[i] = v
	}
	out, _ := f.WithSeries(NewSeries(name, values))
	return out
}

// Concat stacks frames vertically. The result has the union of the columns in
// order of first appearance; rows from a frame lacking a column hold nil.
func Concat(frames ...*Frame) (*Frame, error) {
	var names []string
	kinds := make(map[string]Kind)
	for _, f := range frames {
		for _, s := range f.series {
			k, seen := kinds[s.Name]
			if !seen {
				names = append(names, s.Name)
			}
			merged := mergeKinds(k, s.Kind)
			if seen && k != Unknown && s.Kind != Unknown && merged == String && (k != String || s.Kind != String) {
				return nil, fmt.Errorf("column %s: cannot concatenate %s with %s values", s.Name, k, s.Kind)
			}
			kinds[s.Name] = merged
		}
	}

	total := 0
	for _, f := range frames {
		total += f.Len()
	}

	series := make([]*Series, len(names))
	for i, name := range names {
		values := make([]any, 0, total)
		for _, f := range frames {
			if s, ok := f.Column(name); ok {
				values = append(values, s.Values...)
			} else {
				values = append(values, make([]any, f.Len())...)
			}
		}
		series[i] = NewTypedSeries(name, kinds[name], values)
	}
	return New(series...)
}

// DropDuplicates keeps the first row for every distinct value of key.
// Rows with a nil key are kept.
func (f *Frame) DropDuplicates(key string) (*Frame, error) {
	col, ok := f.Column(key)
	if !ok {
		return nil, fmt.Errorf("column %q not found", key)
	}

	seen := make(map[string]bool)
	keep := make([]int, 0, f.Len())
	for i, v := range col.Values {
		if v == nil {
			keep = append(keep, i)
			continue
		}
		k := FormatValue(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, i)
	}

	out := make([]*Series, len(f.series))
	for c, s := range f.series {
		values := make([]any, len(keep))
		for j, r := range keep {
			values[j] = s.Values[r]
		}
		out[c] = &Series{Name: s.Name, Kind: s.Kind, Values: values}
	}
	return &Frame{series: out}, nil
}
