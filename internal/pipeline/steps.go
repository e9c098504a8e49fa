package pipeline

import (
	"context"
	"fmt"
	"path"

	"github.com/dvloznov/record-cleaner/internal/gcsuploader"
	infra "github.com/dvloznov/record-cleaner/internal/infra/bigquery"
)

// Step is a single stage of the cleaning run.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state threaded through all steps of one run.
type State struct {
	Config Config
	RunID  string

	Users        *Frame
	Transactions *Frame
	Result       *Frame

	OutputPath string
	Report     Report
}

// LoadUsersStep loads the user record collection.
type LoadUsersStep struct{}

func (s *LoadUsersStep) Execute(ctx context.Context, state *State) error {
	users, err := LoadUsers(state.Config.UsersPath)
	if err != nil {
		return err
	}
	state.Users = users
	return nil
}

// LoadTransactionsStep loads the transaction record collection.
type LoadTransactionsStep struct{}

func (s *LoadTransactionsStep) Execute(ctx context.Context, state *State) error {
	transactions, err := LoadTransactions(state.Config.TransactionsPath)
	if err != nil {
		return err
	}
	state.Transactions = transactions
	return nil
}

// CleanUsersStep flattens, deduplicates and normalizes the user frame.
type CleanUsersStep struct{}

func (s *CleanUsersStep) Execute(ctx context.Context, state *State) error {
	return CleanUsers(state.Users, &state.Report)
}

// CleanTransactionsStep normalizes the transaction frame and filters it to
// users that survived cleaning.
type CleanTransactionsStep struct{}

func (s *CleanTransactionsStep) Execute(ctx context.Context, state *State) error {
	return CleanTransactions(state.Transactions, state.Users, &state.Report)
}

// MergeStep inner-joins cleaned users and transactions on user_id.
type MergeStep struct{}

func (s *MergeStep) Execute(ctx context.Context, state *State) error {
	result, err := InnerJoin(state.Users, state.Transactions, "user_id")
	if err != nil {
		return err
	}
	state.Result = result
	return nil
}

// WriteOutputStep writes the joined frame as output.csv in the output
// directory, creating the directory if needed.
type WriteOutputStep struct{}

func (s *WriteOutputStep) Execute(ctx context.Context, state *State) error {
	outputPath, err := WriteCSV(state.Result, state.Config.OutputDir, OutputFileName)
	if err != nil {
		return err
	}
	state.OutputPath = outputPath
	return nil
}

// UploadOutputStep uploads the written file to GCS under a run-scoped
// object name. Only wired in when a bucket is configured.
type UploadOutputStep struct{}

func (s *UploadOutputStep) Execute(ctx context.Context, state *State) error {
	object := path.Join("cleaned", state.RunID, OutputFileName)
	return gcsuploader.UploadOutput(ctx, state.Config.GCSBucket, object, state.OutputPath)
}

// SinkRecordsStep inserts the joined rows into the cleaned_records table.
// Only wired in when a BigQuery project is configured.
type SinkRecordsStep struct{}

func (s *SinkRecordsStep) Execute(ctx context.Context, state *State) error {
	rows := buildCleanedRecordRows(state.RunID, state.Result)
	return infra.InsertCleanedRecords(ctx, state.Config.BigQueryProject, state.Config.BigQueryDataset, rows)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps sequentially, stopping at the first failure.
func (p *Pipeline) Run(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewCleaningPipeline builds the standard cleaning pipeline for cfg:
// load both collections, clean both, merge, write — plus the optional GCS
// and BigQuery sink steps when configured.
func NewCleaningPipeline(cfg Config) *Pipeline {
	steps := []Step{
		&LoadUsersStep{},
		&LoadTransactionsStep{},
		&CleanUsersStep{},
		&CleanTransactionsStep{},
		&MergeStep{},
		&WriteOutputStep{},
	}
	if cfg.GCSBucket != "" {
		steps = append(steps, &UploadOutputStep{})
	}
	if cfg.BigQueryProject != "" {
		steps = append(steps, &SinkRecordsStep{})
	}
	return NewPipeline(steps...)
}
