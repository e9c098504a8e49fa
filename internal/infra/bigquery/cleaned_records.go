package bigquery

import (
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// CleanedRecordRow is one joined (user, transaction) output row in the
// <dataset>.cleaned_records table.
type CleanedRecordRow struct {
	RecordID string `bigquery:"record_id"` // REQUIRED
	RunID    string `bigquery:"run_id"`    // REQUIRED, links to clean_runs

	TransactionID string `bigquery:"transaction_id"` // the renamed ID field
	UserID        string `bigquery:"user_id"`

	// Masked fields, exactly as written to the CSV. Never the raw values.
	Email      string `bigquery:"email"`
	NationalID string `bigquery:"national_id"`

	Timestamp      bigquery.NullDateTime `bigquery:"tx_timestamp"`    // NULLABLE
	AccountCreated bigquery.NullDateTime `bigquery:"account_created"` // NULLABLE

	Amount bigquery.NullFloat64 `bigquery:"amount"` // NULLABLE

	// Extra carries the data-defined columns (location sub-fields and any
	// carried-through transaction fields) as a JSON object.
	Extra bigquery.NullJSON `bigquery:"extra"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// Summary renders one record as a fixed-width terminal line for the
// records subcommand. NULL fields print as "-".
func (r *CleanedRecordRow) Summary() string {
	ts := "-"
	if r.Timestamp.Valid {
		ts = r.Timestamp.DateTime.String()
	}
	amount := "-"
	if r.Amount.Valid {
		amount = fmt.Sprintf("%.2f", r.Amount.Float64)
	}
	return fmt.Sprintf("%-14s %-10s %-20s %10s", r.TransactionID, r.UserID, ts, amount)
}
