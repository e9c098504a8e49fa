package pipeline

// Config carries everything one run needs, so the pipeline can be pointed
// at arbitrary source and destination locations and tested without any
// fixed paths.
type Config struct {
	UsersPath        string
	TransactionsPath string
	OutputDir        string

	// GCSBucket, when set, enables uploading the written output file to
	// Google Cloud Storage after the run.
	GCSBucket string

	// BigQueryProject, when set, enables the BigQuery sink: joined rows go
	// to the cleaned_records table and the run is tracked in clean_runs.
	BigQueryProject string
	BigQueryDataset string
}

func (c Config) withDefaults() Config {
	if c.UsersPath == "" {
		c.UsersPath = DefaultUsersFile
	}
	if c.TransactionsPath == "" {
		c.TransactionsPath = DefaultTransactionsFile
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.BigQueryDataset == "" {
		c.BigQueryDataset = DefaultBigQueryDataset
	}
	return c
}
