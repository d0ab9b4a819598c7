package model

import (
	"testing"
	"time"
)

func TestSetCategory(t *testing.T) {
	txn := Transaction{ID: "t1", UserID: "u1", Description: "SHELL OIL"}

	txn.SetCategory("Transportation", "Fuel", ConfidenceManual)
	if !txn.IsCategorized {
		t.Error("IsCategorized = false after assigning a category")
	}
	if txn.Category != "Transportation" || txn.Subcategory != "Fuel" {
		t.Errorf("Category = %q/%q", txn.Category, txn.Subcategory)
	}
	if txn.Confidence != ConfidenceManual {
		t.Errorf("Confidence = %v, want %v", txn.Confidence, ConfidenceManual)
	}

	txn.SetCategory("", "", 0)
	if txn.IsCategorized {
		t.Error("IsCategorized = true after clearing the category")
	}
}

func TestGenerateHash(t *testing.T) {
	base := Transaction{
		UserID:      "u1",
		Date:        time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC),
		Amount:      -4.50,
		Description: "COFFEE PURCHASE",
		Vendor:      "Starbucks",
	}

	t.Run("stable across ids and time of day", func(t *testing.T) {
		other := base
		other.ID = "different-id"
		other.Date = base.Date.Add(6 * time.Hour)
		if base.GenerateHash() != other.GenerateHash() {
			t.Error("Hash changed for the same transaction content")
		}
	})

	t.Run("differs per user", func(t *testing.T) {
		other := base
		other.UserID = "u2"
		if base.GenerateHash() == other.GenerateHash() {
			t.Error("Hash identical across users")
		}
	})

	t.Run("differs per content", func(t *testing.T) {
		other := base
		other.Amount = -4.51
		if base.GenerateHash() == other.GenerateHash() {
			t.Error("Hash identical for different amounts")
		}
	})
}
