package services

import (
	"testing"
	"time"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid_home_currency", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		transaction, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Lunch",
			Type:       models.TransactionTypeExpense,
			Amount:     1250,
		})
		testutil.AssertNoError(t, err)

		if transaction.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if transaction.Currency != "USD" {
			t.Errorf("expected home currency USD by default, got %s", transaction.Currency)
		}
		if transaction.BaseAmount != 1250 {
			t.Errorf("expected base amount equal to amount, got %d", transaction.BaseAmount)
		}
		if transaction.Status != models.TransactionStatusCompleted {
			t.Errorf("expected completed status, got %s", transaction.Status)
		}
		if transaction.Version != 1 {
			t.Errorf("expected version 1, got %d", transaction.Version)
		}
	})

	t.Run("pending_status_kept", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		transaction, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Pre-order",
			Type:       models.TransactionTypeExpense,
			Status:     models.TransactionStatusPending,
			Amount:     9900,
		})
		testutil.AssertNoError(t, err)

		if transaction.Status != models.TransactionStatusPending {
			t.Errorf("expected pending status to be kept, got %s", transaction.Status)
		}
	})

	t.Run("unknown_status_rejected", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		_, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Lunch",
			Type:       models.TransactionTypeExpense,
			Status:     models.TransactionStatus("archived"),
			Amount:     1250,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("foreign_currency_converts_base_amount", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		transaction, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID:   category.ID,
			Title:        "Hotel",
			Type:         models.TransactionTypeExpense,
			Amount:       10000,
			Currency:     "EUR",
			ExchangeRate: 1.0852,
		})
		testutil.AssertNoError(t, err)

		if transaction.BaseAmount != 10852 {
			t.Errorf("expected base amount 10852, got %d", transaction.BaseAmount)
		}
		if transaction.Amount != 10000 {
			t.Errorf("expected original amount preserved, got %d", transaction.Amount)
		}
	})

	t.Run("records_category_usage", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		_, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Groceries",
			Type:       models.TransactionTypeExpense,
			Amount:     4200,
		})
		testutil.AssertNoError(t, err)

		fresh := g.db.getCategory(t, category.ID)
		if fresh.TransactionCount != 1 {
			t.Errorf("expected transaction count 1, got %d", fresh.TransactionCount)
		}
		if fresh.TotalAmount != 4200 {
			t.Errorf("expected total amount 4200, got %d", fresh.TotalAmount)
		}
	})

	t.Run("awards_points", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		_, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Coffee",
			Type:       models.TransactionTypeExpense,
			Amount:     450,
		})
		testutil.AssertNoError(t, err)

		fresh := g.db.getUser(t, user.ID)
		if fresh.Points != pointsPerTransaction {
			t.Errorf("expected %d points, got %d", pointsPerTransaction, fresh.Points)
		}
		if fresh.Streak != 1 {
			t.Errorf("expected streak 1, got %d", fresh.Streak)
		}
	})

	t.Run("category_type_mismatch", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		salary := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeIncome)

		_, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: salary.ID,
			Title:      "Wrong bucket",
			Type:       models.TransactionTypeExpense,
			Amount:     100,
		})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("other_users_category_invisible", func(t *testing.T) {
		g := newServiceGraph(t)
		alice := testutil.CreateTestUser(t, g.db.DB)
		bob := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, alice.ID, models.CategoryTypeExpense)

		_, err := g.transactions.CreateTransaction(bob.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Sneaky",
			Type:       models.TransactionTypeExpense,
			Amount:     100,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("invalid_amount", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		_, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Free lunch",
			Type:       models.TransactionTypeExpense,
			Amount:     0,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("recurring_sets_next_date", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		transaction, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID:  category.ID,
			Title:       "Rent",
			Type:        models.TransactionTypeExpense,
			Amount:      150000,
			Date:        date,
			IsRecurring: true,
			Frequency:   models.FrequencyMonthly,
			Interval:    1,
		})
		testutil.AssertNoError(t, err)

		if !transaction.Recurring.IsRecurring {
			t.Fatal("expected recurring flag set")
		}
		if transaction.Recurring.NextDate == nil {
			t.Fatal("expected next date to be computed")
		}
		want := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
		if !transaction.Recurring.NextDate.Equal(want) {
			t.Errorf("expected next date %v, got %v", want, transaction.Recurring.NextDate)
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		old := testutil.CreateTestTransactionAt(t, g.db.DB, user.ID, category.ID,
			models.TransactionTypeExpense, 100, time.Now().AddDate(0, 0, -2))
		recent := testutil.CreateTestTransactionAt(t, g.db.DB, user.ID, category.ID,
			models.TransactionTypeExpense, 200, time.Now())

		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 2 {
			t.Fatalf("expected 2 transactions, got %d", page.TotalItems)
		}
		if page.Data[0].ID != recent.ID || page.Data[1].ID != old.ID {
			t.Error("expected newest transaction first")
		}
	})

	t.Run("filters", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		food := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		salary := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeIncome)

		testutil.CreateTestTransaction(t, g.db.DB, user.ID, food.ID, models.TransactionTypeExpense, 500)
		testutil.CreateTestTransaction(t, g.db.DB, user.ID, food.ID, models.TransactionTypeExpense, 5000)
		testutil.CreateTestTransaction(t, g.db.DB, user.ID, salary.ID, models.TransactionTypeIncome, 300000)

		expense := models.TransactionTypeExpense
		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{},
			TransactionFilter{Type: &expense})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 expense transactions, got %d", page.TotalItems)
		}

		min := int64(1000)
		page, err = g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{},
			TransactionFilter{Type: &expense, MinAmount: &min})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 expense transaction above 1000, got %d", page.TotalItems)
		}
	})

	t.Run("search_matches_title_case_insensitive", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		match, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Monthly Netflix",
			Type:       models.TransactionTypeExpense,
			Amount:     1599,
		})
		testutil.AssertNoError(t, err)
		testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 700)

		search := "netflix"
		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{},
			TransactionFilter{Search: &search})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 1 || page.Data[0].ID != match.ID {
			t.Errorf("expected only the Netflix transaction, got %d results", page.TotalItems)
		}
	})

	t.Run("tag_filter", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		tagged, err := g.transactions.CreateTransaction(user.ID, TransactionInput{
			CategoryID: category.ID,
			Title:      "Team dinner",
			Type:       models.TransactionTypeExpense,
			Amount:     8000,
			Tags:       []string{"work", "reimbursable"},
		})
		testutil.AssertNoError(t, err)
		testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 900)

		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{},
			TransactionFilter{Tags: []string{"reimbursable"}})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 1 || page.Data[0].ID != tagged.ID {
			t.Errorf("expected only the tagged transaction, got %d results", page.TotalItems)
		}
	})

	t.Run("isolated_per_user", func(t *testing.T) {
		g := newServiceGraph(t)
		alice := testutil.CreateTestUser(t, g.db.DB)
		bob := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, alice.ID, models.CategoryTypeExpense)
		testutil.CreateTestTransaction(t, g.db.DB, alice.ID, category.ID, models.TransactionTypeExpense, 100)

		page, err := g.transactions.GetUserTransactions(bob.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected no transactions for other user, got %d", page.TotalItems)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("bumps_version", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 100)

		title := "Updated title"
		updated, err := g.transactions.UpdateTransaction(user.ID, transaction.ID, TransactionUpdate{Title: &title})
		testutil.AssertNoError(t, err)

		if updated.Title != "Updated title" {
			t.Errorf("expected updated title, got %s", updated.Title)
		}
		if updated.Version != 2 {
			t.Errorf("expected version 2 after update, got %d", updated.Version)
		}
	})

	t.Run("tags_survive_update_and_reload", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 100)

		updated, err := g.transactions.UpdateTransaction(user.ID, transaction.ID, TransactionUpdate{
			Tags: []string{"work", "travel"},
		})
		testutil.AssertNoError(t, err)
		if len(updated.Tags) != 2 || updated.Tags[0] != "work" || updated.Tags[1] != "travel" {
			t.Errorf("expected tags [work travel], got %v", updated.Tags)
		}

		reloaded, err := g.transactions.GetTransactionByID(user.ID, transaction.ID)
		testutil.AssertNoError(t, err)
		if len(reloaded.Tags) != 2 || reloaded.Tags[0] != "work" {
			t.Errorf("expected tags to round-trip, got %v", reloaded.Tags)
		}
	})

	t.Run("amount_change_recomputes_base", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 100)

		amount := int64(2000)
		rate := 1.5
		currency := "GBP"
		updated, err := g.transactions.UpdateTransaction(user.ID, transaction.ID, TransactionUpdate{
			Amount:       &amount,
			Currency:     &currency,
			ExchangeRate: &rate,
		})
		testutil.AssertNoError(t, err)

		if updated.BaseAmount != 3000 {
			t.Errorf("expected base amount 3000, got %d", updated.BaseAmount)
		}
	})

	t.Run("category_change_checks_type", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		expense := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		income := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeIncome)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, expense.ID, models.TransactionTypeExpense, 100)

		_, err := g.transactions.UpdateTransaction(user.ID, transaction.ID, TransactionUpdate{CategoryID: &income.ID})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("not_found", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)

		title := "x"
		_, err := g.transactions.UpdateTransaction(user.ID, "00000000-0000-0000-0000-000000000000",
			TransactionUpdate{Title: &title})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteAndRestoreTransaction(t *testing.T) {
	t.Run("soft_delete_hides_transaction", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 100)

		testutil.AssertNoError(t, g.transactions.DeleteTransaction(user.ID, transaction.ID))

		_, err := g.transactions.GetTransactionByID(user.ID, transaction.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected deleted transaction to be excluded from listing, got %d", page.TotalItems)
		}
	})

	t.Run("restore_reinstates_unchanged", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 100)

		testutil.AssertNoError(t, g.transactions.DeleteTransaction(user.ID, transaction.ID))

		restored, err := g.transactions.RestoreTransaction(user.ID, transaction.ID)
		testutil.AssertNoError(t, err)

		if restored.Amount != transaction.Amount || restored.Title != transaction.Title {
			t.Error("expected restored transaction to match the original")
		}
		if restored.Version != transaction.Version {
			t.Errorf("expected version %d after restore, got %d", transaction.Version, restored.Version)
		}

		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected restored transaction back in listing, got %d", page.TotalItems)
		}
	})

	t.Run("restore_requires_deleted", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)
		transaction := testutil.CreateTestTransaction(t, g.db.DB, user.ID, category.ID, models.TransactionTypeExpense, 100)

		_, err := g.transactions.RestoreTransaction(user.ID, transaction.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_DELETED")
	})
}

func TestBulkImport(t *testing.T) {
	t.Run("imports_valid_rows", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		result, err := g.transactions.BulkImport(user.ID, []TransactionInput{
			{CategoryID: category.ID, Title: "Row 1", Type: models.TransactionTypeExpense, Amount: 100},
			{CategoryID: category.ID, Title: "Row 2", Type: models.TransactionTypeExpense, Amount: 200},
		})
		testutil.AssertNoError(t, err)

		if result.Imported != 2 || result.Failed != 0 {
			t.Errorf("expected 2 imported and 0 failed, got %d/%d", result.Imported, result.Failed)
		}

		page, err := g.transactions.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions persisted, got %d", page.TotalItems)
		}
	})

	t.Run("partial_failure_reports_indexes", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		result, err := g.transactions.BulkImport(user.ID, []TransactionInput{
			{CategoryID: category.ID, Title: "Good", Type: models.TransactionTypeExpense, Amount: 100},
			{CategoryID: category.ID, Title: "", Type: models.TransactionTypeExpense, Amount: 100},
			{CategoryID: category.ID, Title: "Bad amount", Type: models.TransactionTypeExpense, Amount: -5},
		})
		testutil.AssertNoError(t, err)

		if result.Imported != 1 {
			t.Errorf("expected 1 imported, got %d", result.Imported)
		}
		if result.Failed != 2 {
			t.Errorf("expected 2 failed, got %d", result.Failed)
		}
		if len(result.Errors) != 2 || result.Errors[0].Index != 1 || result.Errors[1].Index != 2 {
			t.Errorf("expected errors for rows 1 and 2, got %+v", result.Errors)
		}
	})

	t.Run("empty_input", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)

		_, err := g.transactions.BulkImport(user.ID, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("awards_points_per_row", func(t *testing.T) {
		g := newServiceGraph(t)
		user := testutil.CreateTestUser(t, g.db.DB)
		category := testutil.CreateTestCategory(t, g.db.DB, user.ID, models.CategoryTypeExpense)

		_, err := g.transactions.BulkImport(user.ID, []TransactionInput{
			{CategoryID: category.ID, Title: "A", Type: models.TransactionTypeExpense, Amount: 100},
			{CategoryID: category.ID, Title: "B", Type: models.TransactionTypeExpense, Amount: 100},
			{CategoryID: category.ID, Title: "C", Type: models.TransactionTypeExpense, Amount: 100},
		})
		testutil.AssertNoError(t, err)

		fresh := g.db.getUser(t, user.ID)
		if fresh.Points != 3*pointsPerTransaction {
			t.Errorf("expected %d points, got %d", 3*pointsPerTransaction, fresh.Points)
		}
	})
}
