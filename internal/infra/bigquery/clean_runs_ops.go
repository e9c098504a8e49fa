package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/record-cleaner/internal/logger"
)

const cleanRunsTable = "clean_runs"

// StartCleanRun inserts a row into <dataset>.clean_runs with status=RUNNING.
func StartCleanRun(ctx context.Context, projectID, datasetID, runID string) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("StartCleanRun: bigquery client: %w", err)
	}
	defer client.Close()

	return StartCleanRunWithClient(ctx, client, datasetID, runID)
}

// StartCleanRunWithClient inserts a RUNNING clean_runs row using the
// provided BigQuery client.
func StartCleanRunWithClient(ctx context.Context, client *bigquery.Client, datasetID, runID string) error {
	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_id,
			started_ts,
			status
		)
		VALUES (
			@run_id,
			@started_ts,
			@status
		)
	`, datasetID, cleanRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("StartCleanRun: running insert query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("StartCleanRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("StartCleanRun: job error: %w", err)
	}
	return nil
}

// MarkCleanRunFailed sets status=FAILED, finished_ts and error_message.
// Failures to record the failure are logged, not returned; the original
// pipeline error is the one the caller should surface.
func MarkCleanRunFailed(ctx context.Context, projectID, datasetID, runID string, runErr error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleanRunFailed: bigquery client error")
		return
	}
	defer client.Close()

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, datasetID, cleanRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleanRunFailed: running update query")
		return
	}
	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleanRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("MarkCleanRunFailed: job completed with error")
	}
}

// MarkCleanRunSucceeded sets status=SUCCESS, finished_ts and the number of
// output rows the run produced.
func MarkCleanRunSucceeded(ctx context.Context, projectID, datasetID, runID string, outputRows int) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("MarkCleanRunSucceeded: bigquery client: %w", err)
	}
	defer client.Close()

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    output_rows = @output_rows,
		    error_message = ""
		WHERE run_id = @run_id
	`, datasetID, cleanRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "output_rows", Value: outputRows},
		{Name: "run_id", Value: runID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkCleanRunSucceeded: running update query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkCleanRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkCleanRunSucceeded: job error: %w", err)
	}
	return nil
}
