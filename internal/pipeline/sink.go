package pipeline

import (
	"encoding/json"
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	infra "github.com/dvloznov/record-cleaner/internal/infra/bigquery"
	"github.com/google/uuid"
)

// fixedSinkColumns are the joined-frame columns mapped to dedicated
// cleaned_records fields; everything else goes into the extra JSON blob.
var fixedSinkColumns = map[string]bool{
	"ID":              true,
	"user_id":         true,
	"timestamp":       true,
	"account_created": true,
	"email":           true,
	"national_id":     true,
	"amount":          true,
}

// buildCleanedRecordRows maps the joined frame into cleaned_records rows.
// Known fields get typed columns; location-derived and carried-through
// fields are data-defined, so they travel in the extra JSON column.
func buildCleanedRecordRows(runID string, f *Frame) []*infra.CleanedRecordRow {
	rows := make([]*infra.CleanedRecordRow, 0, len(f.Rows))
	now := time.Now()

	for _, row := range f.Rows {
		r := &infra.CleanedRecordRow{
			RecordID:       uuid.NewString(),
			RunID:          runID,
			TransactionID:  ValueString(row["ID"]),
			UserID:         ValueString(row["user_id"]),
			Email:          ValueString(row["email"]),
			NationalID:     ValueString(row["national_id"]),
			Timestamp:      canonicalDateTime(row["timestamp"]),
			AccountCreated: canonicalDateTime(row["account_created"]),
			CreatedTS:      now,
		}
		if num, ok := row["amount"].(json.Number); ok {
			if fval, err := num.Float64(); err == nil {
				r.Amount = bigquerylib.NullFloat64{Float64: fval, Valid: true}
			}
		}

		extra := make(map[string]interface{})
		for _, col := range f.Columns {
			if fixedSinkColumns[col] {
				continue
			}
			if v, ok := row[col]; ok && v != nil {
				extra[col] = ValueString(v)
			}
		}
		if len(extra) > 0 {
			b, _ := json.Marshal(extra)
			r.Extra = bigquerylib.NullJSON{JSONVal: string(b), Valid: true}
		}

		rows = append(rows, r)
	}
	return rows
}

// canonicalDateTime parses a canonical "DD/MM/YYYY HH:MM:SS" cell into a
// nullable datetime. Nulled dates stay NULL in the sink.
func canonicalDateTime(v interface{}) bigquerylib.NullDateTime {
	s, ok := v.(string)
	if !ok || s == "" {
		return bigquerylib.NullDateTime{}
	}
	t, err := time.Parse(canonicalDateLayout, s)
	if err != nil {
		return bigquerylib.NullDateTime{}
	}
	return bigquerylib.NullDateTime{DateTime: civil.DateTimeOf(t), Valid: true}
}
