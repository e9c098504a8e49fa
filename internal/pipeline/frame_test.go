package pipeline

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFrameRename(t *testing.T) {
	f := &Frame{
		Columns: []string{"tx_id", "user_id"},
		Rows: []Row{
			{"tx_id": "t1", "user_id": "u1"},
		},
	}

	f.Rename("tx_id", "ID")

	if !reflect.DeepEqual(f.Columns, []string{"ID", "user_id"}) {
		t.Errorf("Columns = %v", f.Columns)
	}
	if got := f.Rows[0]["ID"]; got != "t1" {
		t.Errorf("ID = %v, want t1", got)
	}
	if _, ok := f.Rows[0]["tx_id"]; ok {
		t.Error("tx_id still present after rename")
	}

	// renaming a column that does not exist is a no-op
	f.Rename("missing", "other")
	if !reflect.DeepEqual(f.Columns, []string{"ID", "user_id"}) {
		t.Errorf("Columns after no-op rename = %v", f.Columns)
	}
}

func TestFrameApplyMissingColumn(t *testing.T) {
	f := &Frame{Columns: []string{"a"}, Rows: []Row{{"a": "x"}}}
	err := f.Apply("b", func(v interface{}) interface{} { return v })
	if err == nil {
		t.Error("expected error for missing column")
	}
}

func TestFrameDropDuplicates(t *testing.T) {
	f := &Frame{
		Columns: []string{"a", "b"},
		Rows: []Row{
			{"a": "1", "b": "x"},
			{"a": "1", "b": "x"},
			{"a": "1", "b": "y"},
			{"a": nil, "b": "x"},
			{"a": "", "b": "x"},
		},
	}

	dropped := f.DropDuplicates()

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	// nil and empty string are distinct values, both rows survive
	if len(f.Rows) != 4 {
		t.Errorf("rows = %d, want 4", len(f.Rows))
	}
	if f.Rows[0]["b"] != "x" || f.Rows[1]["b"] != "y" {
		t.Error("first occurrence order not preserved")
	}
}

func TestFrameDropDuplicatesKeepsTypeDistinctRows(t *testing.T) {
	// Values of different types with equal text renderings are not
	// duplicates of each other.
	f := &Frame{
		Columns: []string{"a", "b"},
		Rows: []Row{
			{"a": "true", "b": "5"},
			{"a": true, "b": "5"},
			{"a": "true", "b": json.Number("5")},
		},
	}

	if dropped := f.DropDuplicates(); dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(f.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(f.Rows))
	}
}

func TestFrameFilter(t *testing.T) {
	f := &Frame{
		Columns: []string{"user_id"},
		Rows: []Row{
			{"user_id": "U1"},
			{"user_id": "U2"},
			{"user_id": "U1"},
		},
	}

	dropped := f.Filter(func(row Row) bool {
		return row["user_id"] == "U1"
	})

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(f.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(f.Rows))
	}
}

func TestFrameColumnSet(t *testing.T) {
	f := &Frame{
		Columns: []string{"user_id"},
		Rows: []Row{
			{"user_id": "U1"},
			{"user_id": "U2"},
			{"user_id": "U1"},
		},
	}

	set := f.ColumnSet("user_id")
	if len(set) != 2 || !set["U1"] || !set["U2"] {
		t.Errorf("ColumnSet = %v", set)
	}
}
