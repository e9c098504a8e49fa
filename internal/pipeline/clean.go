package pipeline

import "fmt"

// Report aggregates per-run drop counts. The cleaning contract is silent —
// dropped duplicates, unknown-user transactions and unparseable dates never
// raise errors — so these counts only surface in debug logs.
type Report struct {
	UsersIn                int
	UsersOut               int
	DuplicatesDropped      int
	UserDatesNulled        int
	TransactionsIn         int
	TransactionsOut        int
	UnknownUserDropped     int
	TransactionDatesNulled int
}

// CleanUsers finalizes the user frame in place: flatten location, drop
// exact-duplicate rows, then normalize and mask fields. Deduplication runs
// before masking so masking never collapses would-be-distinct rows.
func CleanUsers(users *Frame, rep *Report) error {
	rep.UsersIn = len(users.Rows)

	if err := users.FlattenColumn("location"); err != nil {
		return fmt.Errorf("CleanUsers: %w", err)
	}
	rep.DuplicatesDropped = users.DropDuplicates()

	if err := users.Apply("account_created", func(v interface{}) interface{} {
		out := NormalizeDate(v)
		if out == nil && v != nil {
			rep.UserDatesNulled++
		}
		return out
	}); err != nil {
		return fmt.Errorf("CleanUsers: %w", err)
	}
	if err := users.Apply("user_id", func(v interface{}) interface{} {
		return UpperCase(ValueString(v))
	}); err != nil {
		return fmt.Errorf("CleanUsers: %w", err)
	}
	if err := users.Apply("email", func(v interface{}) interface{} {
		return MaskEmail(ValueString(v))
	}); err != nil {
		return fmt.Errorf("CleanUsers: %w", err)
	}
	if err := users.Apply("national_id", func(v interface{}) interface{} {
		return MaskNationalID(v)
	}); err != nil {
		return fmt.Errorf("CleanUsers: %w", err)
	}

	rep.UsersOut = len(users.Rows)
	return nil
}

// CleanTransactions finalizes the transaction frame in place: rename
// tx_id to ID, normalize timestamp and user_id, then keep only rows whose
// user_id exists in the already-cleaned user frame. Non-matching rows are
// dropped silently.
func CleanTransactions(transactions, cleanedUsers *Frame, rep *Report) error {
	rep.TransactionsIn = len(transactions.Rows)

	transactions.Rename("tx_id", "ID")

	if err := transactions.Apply("timestamp", func(v interface{}) interface{} {
		out := NormalizeDate(v)
		if out == nil && v != nil {
			rep.TransactionDatesNulled++
		}
		return out
	}); err != nil {
		return fmt.Errorf("CleanTransactions: %w", err)
	}
	if err := transactions.Apply("user_id", func(v interface{}) interface{} {
		return UpperCase(ValueString(v))
	}); err != nil {
		return fmt.Errorf("CleanTransactions: %w", err)
	}

	known := cleanedUsers.ColumnSet("user_id")
	rep.UnknownUserDropped = transactions.Filter(func(row Row) bool {
		return known[ValueString(row["user_id"])]
	})

	rep.TransactionsOut = len(transactions.Rows)
	return nil
}
