package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	return records
}

func TestWriteCSV(t *testing.T) {
	f := &Frame{
		Columns: []string{"ID", "amount", "count", "note", "missing"},
		Rows: []Row{
			{"ID": "t1", "amount": json.Number("9.999"), "count": json.Number("10"), "note": "ok", "missing": nil},
		},
	}

	dir := t.TempDir()
	path, err := WriteCSV(f, dir, "output.csv")
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if path != filepath.Join(dir, "output.csv") {
		t.Errorf("path = %q", path)
	}

	records := readCSV(t, path)
	if !reflect.DeepEqual(records[0], f.Columns) {
		t.Errorf("header = %v, want %v", records[0], f.Columns)
	}
	want := []string{"t1", "10.00", "10", "ok", ""}
	if !reflect.DeepEqual(records[1], want) {
		t.Errorf("row = %v, want %v", records[1], want)
	}
}

func TestWriteCSVCreatesOutputDir(t *testing.T) {
	f := &Frame{Columns: []string{"a"}, Rows: []Row{{"a": "1"}}}

	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := WriteCSV(f, dir, "output.csv"); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "output.csv")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestRenderCell(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		floatCol bool
		want     string
	}{
		{"nil renders empty", nil, false, ""},
		{"string verbatim", "U1", false, "U1"},
		{"fractional number two decimals", json.Number("9.999"), true, "10.00"},
		{"exponent number two decimals", json.Number("1e2"), true, "100.00"},
		{"integer in float column two decimals", json.Number("5"), true, "5.00"},
		{"integer column verbatim", json.Number("12345"), false, "12345"},
		{"negative fraction", json.Number("-0.005"), true, "-0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderCell(tt.input, tt.floatCol); got != tt.want {
				t.Errorf("renderCell(%v, %v) = %q, want %q", tt.input, tt.floatCol, got, tt.want)
			}
		})
	}
}

func TestWriteCSVMixedFloatColumn(t *testing.T) {
	// One fractional value makes the whole column float: the integer
	// amount renders "5.00", while the all-integer count column stays
	// verbatim.
	f := &Frame{
		Columns: []string{"amount", "count"},
		Rows: []Row{
			{"amount": json.Number("9.999"), "count": json.Number("1")},
			{"amount": json.Number("5"), "count": json.Number("2")},
		},
	}

	path, err := WriteCSV(f, t.TempDir(), "output.csv")
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records := readCSV(t, path)
	if records[1][0] != "10.00" || records[2][0] != "5.00" {
		t.Errorf("amount column = [%s %s], want [10.00 5.00]", records[1][0], records[2][0])
	}
	if records[1][1] != "1" || records[2][1] != "2" {
		t.Errorf("count column = [%s %s], want [1 2]", records[1][1], records[2][1])
	}
}
