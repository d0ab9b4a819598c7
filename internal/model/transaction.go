// Package model defines the core data structures for the fin-good application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Confidence values record how a transaction's category was assigned.
const (
	// ConfidenceManual marks a category set directly by the user.
	ConfidenceManual = 1.0
	// ConfidenceRuleMatch marks a category applied by a matching rule.
	ConfidenceRuleMatch = 0.9
	// ConfidencePropagated marks a category copied from a similar transaction.
	ConfidencePropagated = 0.8
)

// Transaction represents a single financial transaction for one user.
type Transaction struct {
	Date          time.Time
	CreatedAt     time.Time
	ID            string
	UserID        string
	BatchID       string // Import batch this transaction arrived in
	Description   string // Raw transaction description
	Vendor        string // Cleaned vendor name, may be empty
	Hash          string
	Category      string
	Subcategory   string
	Amount        float64
	Confidence    float64
	IsCategorized bool
}

// SetCategory assigns a category to the transaction and records the
// confidence of the assignment. IsCategorized tracks whether a category
// is present so the two never drift apart.
func (t *Transaction) SetCategory(category, subcategory string, confidence float64) {
	t.Category = category
	t.Subcategory = subcategory
	t.IsCategorized = category != ""
	t.Confidence = confidence
}

// GenerateHash creates a unique hash for duplicate detection on import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s",
		t.UserID,
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.Vendor)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
