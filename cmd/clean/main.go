package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/record-cleaner/internal/logger"
	"github.com/dvloznov/record-cleaner/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// Best-effort .env load for the optional sink settings
	_ = godotenv.Load()

	usersPath := flag.String("users", pipeline.DefaultUsersFile, "Path to the dirty users JSON file")
	transactionsPath := flag.String("transactions", pipeline.DefaultTransactionsFile, "Path to the dirty transactions JSON file")
	outputDir := flag.String("output-dir", pipeline.DefaultOutputDir, "Directory for output.csv (created if missing)")
	verbose := flag.Bool("v", false, "Enable debug logging (per-run drop counts)")
	flag.Parse()

	log := logger.New(*verbose)

	// Create context with timeout so the CLI doesn't hang on sink calls
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg := pipeline.Config{
		UsersPath:        *usersPath,
		TransactionsPath: *transactionsPath,
		OutputDir:        *outputDir,
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		BigQueryProject:  os.Getenv("BIGQUERY_PROJECT"),
		BigQueryDataset:  os.Getenv("BIGQUERY_DATASET"),
	}

	result, err := pipeline.CleanData(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Cleaning failed")
	}

	fmt.Printf("Cleaning completed successfully: %d rows written.\n", len(result.Rows))
}
