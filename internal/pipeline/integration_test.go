package pipeline_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dvloznov/record-cleaner/internal/pipeline"
)

const usersFixture = `[
	{"user_id": "u1", "email": "a@b.com", "national_id": "12345", "account_created": "01-02-2023-10-30", "location": {"city": "X"}},
	{"user_id": "u1", "email": "a@b.com", "national_id": "12345", "account_created": "01-02-2023-10-30", "location": {"city": "X"}},
	{"user_id": "u3", "email": "long.name@mail.org", "national_id": 900123, "account_created": "garbage", "location": {"city": "Y", "country": "FR"}}
]`

const transactionsFixture = `[
	{"tx_id": "t1", "user_id": "u1", "timestamp": "2023/02/01 10:30", "amount": 9.999},
	{"tx_id": "t2", "user_id": "u2", "timestamp": "2023/02/01 11:00", "amount": 5},
	{"tx_id": "t3", "user_id": "U3", "timestamp": "01-03-2023-09-15", "amount": 12.5}
]`

func runCleanData(t *testing.T, users, transactions string) (*pipeline.Frame, [][]string) {
	t.Helper()

	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	txPath := filepath.Join(dir, "transactions.json")
	outDir := filepath.Join(dir, "cleaned")
	if err := os.WriteFile(usersPath, []byte(users), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(txPath, []byte(transactions), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := pipeline.CleanData(context.Background(), pipeline.Config{
		UsersPath:        usersPath,
		TransactionsPath: txPath,
		OutputDir:        outDir,
	})
	if err != nil {
		t.Fatalf("CleanData failed: %v", err)
	}

	f, err := os.Open(filepath.Join(outDir, pipeline.OutputFileName))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	return result, records
}

func TestCleanDataEndToEnd(t *testing.T) {
	result, records := runCleanData(t, usersFixture, transactionsFixture)

	wantHeader := []string{"user_id", "email", "national_id", "account_created", "city", "country", "ID", "timestamp", "amount"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}

	// duplicate u1 collapsed, t2 references an unknown user: two output rows
	if len(records) != 3 {
		t.Fatalf("output rows = %d, want 2 (+header)", len(records)-1)
	}
	if len(result.Rows) != 2 {
		t.Errorf("returned frame rows = %d, want 2", len(result.Rows))
	}

	byID := map[string][]string{}
	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	for _, rec := range records[1:] {
		byID[rec[col["ID"]]] = rec
	}

	t1, ok := byID["t1"]
	if !ok {
		t.Fatal("t1 missing from output")
	}
	if t1[col["user_id"]] != "U1" {
		t.Errorf("t1 user_id = %q, want U1", t1[col["user_id"]])
	}
	if t1[col["email"]] != "a@b.com" {
		t.Errorf("t1 email = %q", t1[col["email"]])
	}
	if t1[col["national_id"]] != "12XXX" {
		t.Errorf("t1 national_id = %q, want 12XXX", t1[col["national_id"]])
	}
	if t1[col["account_created"]] != "01/02/2023 10:30:00" {
		t.Errorf("t1 account_created = %q", t1[col["account_created"]])
	}
	if t1[col["timestamp"]] != "01/02/2023 10:30:00" {
		t.Errorf("t1 timestamp = %q", t1[col["timestamp"]])
	}
	if t1[col["amount"]] != "10.00" {
		t.Errorf("t1 amount = %q, want 10.00", t1[col["amount"]])
	}
	if t1[col["city"]] != "X" {
		t.Errorf("t1 city = %q, want X", t1[col["city"]])
	}

	// u3's id was uppercased on both sides, so its transaction joins too
	t3, ok := byID["t3"]
	if !ok {
		t.Fatal("t3 missing from output (case normalization must apply to both sides)")
	}
	if t3[col["email"]] != "l********@mail.org" {
		t.Errorf("t3 email = %q", t3[col["email"]])
	}
	if t3[col["national_id"]] != "900XXX" {
		t.Errorf("t3 national_id = %q, want 900XXX", t3[col["national_id"]])
	}
	if t3[col["account_created"]] != "" {
		t.Errorf("t3 account_created = %q, want empty (garbage date nulled)", t3[col["account_created"]])
	}
	if t3[col["amount"]] != "12.50" {
		t.Errorf("t3 amount = %q, want 12.50", t3[col["amount"]])
	}

	// transactions referencing unknown users appear nowhere in the file
	for _, rec := range records {
		joined := strings.Join(rec, ",")
		if strings.Contains(joined, "t2") || strings.Contains(joined, "U2") {
			t.Errorf("dropped transaction leaked into output: %v", rec)
		}
	}
}

func TestCleanDataLoadFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.json")
	if err := os.WriteFile(txPath, []byte(transactionsFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := pipeline.CleanData(context.Background(), pipeline.Config{
		UsersPath:        filepath.Join(dir, "missing.json"),
		TransactionsPath: txPath,
		OutputDir:        filepath.Join(dir, "cleaned"),
	})
	if err == nil {
		t.Fatal("expected error for missing users file")
	}

	// no partial output
	if _, statErr := os.Stat(filepath.Join(dir, "cleaned", pipeline.OutputFileName)); statErr == nil {
		t.Error("partial output written despite load failure")
	}
}

func TestCleanDataBrokenLocationFailsRun(t *testing.T) {
	users := `[{"user_id": "u1", "email": "a@b.com", "national_id": "1", "account_created": null, "location": "Paris"}]`

	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	txPath := filepath.Join(dir, "transactions.json")
	if err := os.WriteFile(usersPath, []byte(users), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(txPath, []byte(transactionsFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := pipeline.CleanData(context.Background(), pipeline.Config{
		UsersPath:        usersPath,
		TransactionsPath: txPath,
		OutputDir:        filepath.Join(dir, "cleaned"),
	})
	if err == nil {
		t.Fatal("expected error for non-record location")
	}
}
