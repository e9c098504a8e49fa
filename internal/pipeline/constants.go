package pipeline

// Default locations for the one-shot batch run. These mirror the layout the
// dirty exports land in; the commands override them via flags.
const (
	DefaultUsersFile        = "dirty_files/users.json"
	DefaultTransactionsFile = "dirty_files/transactions.json"
	DefaultOutputDir        = "cleaned_files"

	// OutputFileName is the fixed name of the joined output inside the
	// output directory.
	OutputFileName = "output.csv"

	// DefaultBigQueryDataset holds the cleaned_records and clean_runs
	// tables when the BigQuery sink is enabled.
	DefaultBigQueryDataset = "record_cleaner"
)
