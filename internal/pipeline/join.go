package pipeline

import "fmt"

// InnerJoin joins two frames on the named key: one output row per matching
// (left, right) pair, left columns first, left row order preserved and
// right matches in their own order within each left row. The key column
// appears once, on the left side.
//
// Both sides are expected to carry the key post-normalization, so matching
// here is plain equality.
func InnerJoin(left, right *Frame, on string) (*Frame, error) {
	if !left.HasColumn(on) {
		return nil, fmt.Errorf("InnerJoin: left frame has no column %q", on)
	}
	if !right.HasColumn(on) {
		return nil, fmt.Errorf("InnerJoin: right frame has no column %q", on)
	}

	out := &Frame{Columns: append([]string(nil), left.Columns...)}

	// Right-side columns keep their order; a name collision with the left
	// side gets a suffix so neither side's values are lost.
	rightCols := make([]string, 0, len(right.Columns))
	renamed := make(map[string]string, len(right.Columns))
	for _, c := range right.Columns {
		if c == on {
			continue
		}
		name := c
		if out.HasColumn(name) {
			name = c + "_right"
		}
		renamed[c] = name
		rightCols = append(rightCols, name)
	}
	out.Columns = append(out.Columns, rightCols...)

	index := make(map[string][]Row, len(right.Rows))
	for _, row := range right.Rows {
		key := ValueString(row[on])
		index[key] = append(index[key], row)
	}

	for _, lrow := range left.Rows {
		for _, rrow := range index[ValueString(lrow[on])] {
			merged := make(Row, len(out.Columns))
			for _, c := range left.Columns {
				merged[c] = lrow[c]
			}
			for c, name := range renamed {
				merged[name] = rrow[c]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out, nil
}
