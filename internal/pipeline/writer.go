package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteCSV renders the frame as a flat delimited table under outputDir,
// creating the directory if absent. One header row of column names, then
// one row per record. Returns the full path of the written file.
//
// Rendering is presentation only: floating-point cells are written with two
// decimals, but the stored values keep their source precision (joins and
// comparisons never see the rounded form).
func WriteCSV(f *Frame, outputDir, filename string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("WriteCSV: create output dir %s: %w", outputDir, err)
	}

	path := filepath.Join(outputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("WriteCSV: create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(f.Columns); err != nil {
		return "", fmt.Errorf("WriteCSV: write header: %w", err)
	}

	floatCols := floatColumns(f)
	record := make([]string, len(f.Columns))
	for i, row := range f.Rows {
		for j, col := range f.Columns {
			record[j] = renderCell(row[col], floatCols[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("WriteCSV: write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return path, nil
}

// floatColumns reports which columns hold floating-point data: one
// fractional value makes the whole column float, so a mixed column renders
// uniformly (the same column-level typing the source frames came from).
func floatColumns(f *Frame) map[string]bool {
	cols := make(map[string]bool)
	for _, row := range f.Rows {
		for _, col := range f.Columns {
			if num, ok := row[col].(json.Number); ok && strings.ContainsAny(num.String(), ".eE") {
				cols[col] = true
			}
		}
	}
	return cols
}

// renderCell formats one cell for output. nil renders empty; numbers in a
// float column render at two decimals; integer columns stay verbatim.
func renderCell(v interface{}, floatCol bool) string {
	num, ok := v.(json.Number)
	if !ok || !floatCol {
		return ValueString(v)
	}
	fval, err := num.Float64()
	if err != nil {
		return num.String()
	}
	return fmt.Sprintf("%.2f", fval)
}
