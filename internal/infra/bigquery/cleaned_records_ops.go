package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const cleanedRecordsTable = "cleaned_records"

// InsertCleanedRecords inserts a batch of joined output rows into
// <dataset>.cleaned_records.
func InsertCleanedRecords(ctx context.Context, projectID, datasetID string, rows []*CleanedRecordRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertCleanedRecords: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertCleanedRecordsWithClient(ctx, client, datasetID, rows)
}

// InsertCleanedRecordsWithClient inserts a batch of joined output rows
// using the provided BigQuery client.
func InsertCleanedRecordsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, rows []*CleanedRecordRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(cleanedRecordsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertCleanedRecords: inserting rows: %w", err)
	}
	return nil
}

// QueryCleanedRecordsByUser returns the cleaned records of a single user,
// newest first. Only rows from successful runs are included, so records
// from aborted runs never leak out.
func QueryCleanedRecordsByUser(ctx context.Context, projectID, datasetID, userID string) ([]*CleanedRecordRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("QueryCleanedRecordsByUser: bigquery client: %w", err)
	}
	defer client.Close()

	return QueryCleanedRecordsByUserWithClient(ctx, client, datasetID, userID)
}

// QueryCleanedRecordsByUserWithClient returns the cleaned records of a
// single user using the provided BigQuery client.
func QueryCleanedRecordsByUserWithClient(ctx context.Context, client *bigquery.Client, datasetID, userID string) ([]*CleanedRecordRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			r.record_id,
			r.run_id,
			r.transaction_id,
			r.user_id,
			r.email,
			r.national_id,
			r.tx_timestamp,
			r.account_created,
			r.amount,
			r.extra,
			r.created_ts
		FROM %s.%s r
		INNER JOIN %s.%s cr
		  ON r.run_id = cr.run_id
		WHERE r.user_id = @user_id
		  AND cr.status = 'SUCCESS'
		ORDER BY r.created_ts DESC
	`, datasetID, cleanedRecordsTable, datasetID, cleanRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryCleanedRecordsByUser: query read: %w", err)
	}

	var rows []*CleanedRecordRow
	for {
		var r CleanedRecordRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryCleanedRecordsByUser: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
