package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestRecurringFlow_AdvanceCreatesNextOccurrence(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "rec@test.com", "password123")
	rentID := app.findCategory(t, token, "Rent")

	rec := app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"title":"Rent","type":"expense","category_id":%q,"amount":120000,"date":"2026-08-01T00:00:00Z","is_recurring":true,"frequency":"monthly"}`, rentID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	parent := dataOf(t, rec)
	parentID := parent["id"].(string)
	recurring := parent["recurring"].(map[string]interface{})
	if recurring["is_recurring"] != true {
		t.Fatal("expected recurring transaction")
	}
	if next := fmt.Sprintf("%v", recurring["next_date"]); next[:10] != "2026-09-01" {
		t.Errorf("expected next_date 2026-09-01, got %v", next)
	}

	// Advance ahead of schedule
	rec = app.request("POST", "/api/v1/transactions/"+parentID+"/advance", "", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("advance failed: %d %s", rec.Code, rec.Body.String())
	}
	child := dataOf(t, rec)
	if child["title"] != "Rent" || child["amount"].(float64) != 120000 {
		t.Errorf("expected cloned occurrence, got %v", child)
	}
	childRecurring := child["recurring"].(map[string]interface{})
	if childRecurring["parent_transaction_id"] != parentID {
		t.Errorf("expected child linked to parent, got %v", childRecurring["parent_transaction_id"])
	}
	if childRecurring["next_date"] != nil {
		t.Errorf("expected child occurrence to carry no schedule, got %v", childRecurring["next_date"])
	}

	// The parent's schedule moved forward one month
	rec = app.request("GET", "/api/v1/transactions/"+parentID, "", token)
	parent = dataOf(t, rec)
	recurring = parent["recurring"].(map[string]interface{})
	if next := fmt.Sprintf("%v", recurring["next_date"]); next[:10] != "2026-10-01" {
		t.Errorf("expected next_date 2026-10-01 after advance, got %v", next)
	}
}

func TestRecurringFlow_AdvanceNonRecurring(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "recno@test.com", "password123")
	foodID := app.findCategory(t, token, "Food")
	txID := app.createTransaction(t, token, foodID, "Lunch", 1500)

	rec := app.request("POST", "/api/v1/transactions/"+txID+"/advance", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCodeOf(t, rec); code != "NOT_RECURRING" {
		t.Errorf("expected NOT_RECURRING, got %v", code)
	}
}
