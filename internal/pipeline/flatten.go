package pipeline

import "fmt"

// FlattenColumn removes a record-valued column and promotes its sub-fields
// to top-level columns, positioned after the existing columns in first-seen
// order. Rows missing a sub-field get nil there.
//
// Every row must carry a record-shaped value in the column; anything else
// (absent, scalar, array) is a precondition violation and fails the call.
func (f *Frame) FlattenColumn(name string) error {
	if !f.HasColumn(name) {
		return fmt.Errorf("FlattenColumn: no column %q", name)
	}

	var subColumns []string
	seen := make(map[string]bool)
	nested := make([]*Nested, len(f.Rows))

	for i, row := range f.Rows {
		n, ok := row[name].(*Nested)
		if !ok {
			return fmt.Errorf("FlattenColumn: row %d: %s is %T, want record", i, name, row[name])
		}
		nested[i] = n
		for _, key := range n.Keys {
			if !seen[key] {
				seen[key] = true
				subColumns = append(subColumns, key)
			}
		}
	}

	columns := f.Columns[:0]
	for _, c := range f.Columns {
		if c != name {
			columns = append(columns, c)
		}
	}
	f.Columns = append(columns, subColumns...)

	for i, row := range f.Rows {
		delete(row, name)
		for _, key := range subColumns {
			if v, ok := nested[i].Fields[key]; ok {
				row[key] = v
			} else {
				row[key] = nil
			}
		}
	}
	return nil
}
