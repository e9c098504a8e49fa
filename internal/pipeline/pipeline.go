package pipeline

import (
	"context"

	infra "github.com/dvloznov/record-cleaner/internal/infra/bigquery"
	"github.com/dvloznov/record-cleaner/internal/logger"
	"github.com/google/uuid"
)

// CleanData runs the whole cleaning pipeline for cfg: load both record
// collections, clean users and transactions, inner-join them on user_id and
// write the result to output.csv in the configured output directory.
// Returns the joined frame.
//
// A load failure or a broken precondition aborts the run; per-value date
// failures and unmatched transactions are absorbed silently (counts land in
// the debug log only). When a BigQuery project is configured the run is
// tracked in the clean_runs table alongside the record sink.
func CleanData(ctx context.Context, cfg Config) (*Frame, error) {
	cfg = cfg.withDefaults()
	log := logger.FromContext(ctx)

	state := &State{
		Config: cfg,
		RunID:  uuid.NewString(),
	}
	log.Info().
		Str("run_id", state.RunID).
		Str("users", cfg.UsersPath).
		Str("transactions", cfg.TransactionsPath).
		Str("output_dir", cfg.OutputDir).
		Msg("Starting cleaning run")

	tracked := cfg.BigQueryProject != ""
	if tracked {
		if err := infra.StartCleanRun(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, state.RunID); err != nil {
			return nil, err
		}
	}

	if err := NewCleaningPipeline(cfg).Run(ctx, state); err != nil {
		if tracked {
			infra.MarkCleanRunFailed(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, state.RunID, err)
		}
		return nil, err
	}

	if tracked {
		if err := infra.MarkCleanRunSucceeded(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, state.RunID, len(state.Result.Rows)); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("run_id", state.RunID).
		Int("users_in", state.Report.UsersIn).
		Int("users_out", state.Report.UsersOut).
		Int("duplicates_dropped", state.Report.DuplicatesDropped).
		Int("user_dates_nulled", state.Report.UserDatesNulled).
		Int("transactions_in", state.Report.TransactionsIn).
		Int("transactions_out", state.Report.TransactionsOut).
		Int("unknown_user_dropped", state.Report.UnknownUserDropped).
		Int("transaction_dates_nulled", state.Report.TransactionDatesNulled).
		Msg("Cleaning report")

	log.Info().
		Str("run_id", state.RunID).
		Str("output", state.OutputPath).
		Int("rows", len(state.Result.Rows)).
		Msg("Cleaning run complete")

	return state.Result, nil
}
