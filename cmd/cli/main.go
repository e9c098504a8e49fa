package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/record-cleaner/internal/gcsuploader"
	infraBQ "github.com/dvloznov/record-cleaner/internal/infra/bigquery"
	"github.com/dvloznov/record-cleaner/internal/logger"
	"github.com/dvloznov/record-cleaner/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()
	log := logger.New(false)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "clean":
		runClean(log)
	case "upload":
		runUpload(log)
	case "preview":
		runPreview(log)
	case "records":
		runRecords(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Record Cleaner CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  clean     Clean, join and write the user/transaction datasets")
	fmt.Println("  upload    Upload a produced CSV to GCS")
	fmt.Println("  preview   Print the first rows of a produced CSV")
	fmt.Println("  records   List a user's cleaned records from BigQuery")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runClean(log zerolog.Logger) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	usersPath := fs.String("users", pipeline.DefaultUsersFile, "Path to the dirty users JSON file")
	transactionsPath := fs.String("transactions", pipeline.DefaultTransactionsFile, "Path to the dirty transactions JSON file")
	outputDir := fs.String("output-dir", pipeline.DefaultOutputDir, "Directory for output.csv")
	verbose := fs.Bool("v", false, "Enable debug logging")
	fs.Parse(os.Args[2:])

	if *verbose {
		log = logger.New(true)
	}

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

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", filepath.Join(pipeline.DefaultOutputDir, pipeline.OutputFileName), "Path to local CSV file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME [-file PATH]")
	}
	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := gcsuploader.UploadOutput(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func runRecords(log zerolog.Logger) {
	fs := flag.NewFlagSet("records", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to list cleaned records for")
	project := fs.String("project", os.Getenv("BIGQUERY_PROJECT"), "BigQuery project ID")
	dataset := fs.String("dataset", os.Getenv("BIGQUERY_DATASET"), "BigQuery dataset")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}
	if *project == "" {
		log.Fatal().Msg("Error: --project or BIGQUERY_PROJECT is required")
	}
	if *dataset == "" {
		*dataset = pipeline.DefaultBigQueryDataset
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	// Lookups go through the same key normalization as the pipeline, so
	// "u1" finds the records stored under "U1".
	user := pipeline.UpperCase(*userID)

	rows, err := infraBQ.QueryCleanedRecordsByUser(ctx, *project, *dataset, user)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query cleaned records")
	}

	fmt.Printf("\n=== Cleaned Records for %s ===\n", user)
	fmt.Printf("%-14s %-10s %-20s %10s\n", "ID", "USER", "TIMESTAMP", "AMOUNT")
	for _, r := range rows {
		fmt.Println(r.Summary())
	}
	fmt.Printf("\n%d record(s).\n", len(rows))
}

func runPreview(log zerolog.Logger) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	filePath := fs.String("file", filepath.Join(pipeline.DefaultOutputDir, pipeline.OutputFileName), "Path to the CSV to preview")
	rows := fs.Int("n", 10, "Number of rows to print")
	fs.Parse(os.Args[2:])

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Preview failed")
	}
	defer f.Close()

	r := csv.NewReader(f)
	for i := 0; i <= *rows; i++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Preview failed")
		}
		fmt.Println(strings.Join(record, ","))
	}
}
