package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row maps column names to cell values. Cell values are one of: string,
// json.Number, bool, nil, *Nested (record-shaped field) or []interface{}.
type Row map[string]interface{}

// Nested is a record-valued cell with the source key order preserved.
// encoding/json maps lose key order, so the loader builds these directly
// from the token stream.
type Nested struct {
	Keys   []string
	Fields map[string]interface{}
}

// Frame is an ordered in-memory table: one Row per source record, with an
// explicit column order so the written output matches the source field order.
type Frame struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Rename renames a column. Missing columns are ignored, so renames stay
// safe to apply to data that never had the old name.
func (f *Frame) Rename(old, to string) {
	for i, c := range f.Columns {
		if c == old {
			f.Columns[i] = to
		}
	}
	for _, row := range f.Rows {
		if v, ok := row[old]; ok {
			row[to] = v
			delete(row, old)
		}
	}
}

// Apply replaces every value in the named column with fn(value).
// Rows without the column are treated as holding nil.
func (f *Frame) Apply(column string, fn func(interface{}) interface{}) error {
	if !f.HasColumn(column) {
		return fmt.Errorf("Apply: no column %q", column)
	}
	for _, row := range f.Rows {
		row[column] = fn(row[column])
	}
	return nil
}

// Filter keeps only the rows for which keep returns true and reports how
// many rows were removed.
func (f *Frame) Filter(keep func(Row) bool) int {
	kept := f.Rows[:0]
	for _, row := range f.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	dropped := len(f.Rows) - len(kept)
	f.Rows = kept
	return dropped
}

// DropDuplicates removes rows that are identical across every column,
// keeping the first occurrence. Returns the number of rows removed.
func (f *Frame) DropDuplicates() int {
	seen := make(map[string]bool, len(f.Rows))
	kept := f.Rows[:0]
	for _, row := range f.Rows {
		key := rowKey(f.Columns, row)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	dropped := len(f.Rows) - len(kept)
	f.Rows = kept
	return dropped
}

// ColumnSet returns the distinct values of a column, stringified.
func (f *Frame) ColumnSet(column string) map[string]bool {
	set := make(map[string]bool, len(f.Rows))
	for _, row := range f.Rows {
		set[ValueString(row[column])] = true
	}
	return set
}

// rowKey builds a dedup key from every column value in column order.
// \x1f separates cells; a type tag per cell keeps nil distinct from "" and
// type-distinct values with equal renderings (true vs "true") apart.
func rowKey(columns []string, row Row) string {
	var b strings.Builder
	for _, c := range columns {
		v, ok := row[c]
		if !ok || v == nil {
			b.WriteString("\x00")
			b.WriteByte('\x1f')
			continue
		}
		switch v.(type) {
		case string:
			b.WriteString("s:")
		case json.Number:
			b.WriteString("n:")
		case bool:
			b.WriteString("b:")
		default:
			b.WriteString("v:")
		}
		b.WriteString(ValueString(v))
		b.WriteByte('\x1f')
	}
	return b.String()
}

// ValueString renders a single cell as text. nil becomes the empty string;
// numbers keep their source literal.
func ValueString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case *Nested:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range val.Keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte(':')
			b.WriteString(ValueString(val.Fields[k]))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return fmt.Sprint(val)
	}
}
