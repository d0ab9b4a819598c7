package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCSVParserParse(t *testing.T) {
	ctx := context.Background()
	parser := NewCSVParser()

	t.Run("standard export", func(t *testing.T) {
		input := strings.Join([]string{
			"Date,Description,Vendor,Amount",
			"2024-03-10,COFFEE PURCHASE,Starbucks,-4.50",
			"2024-03-11,RENT PAYMENT,,-1200.00",
		}, "\n")

		txns, err := parser.Parse(ctx, strings.NewReader(input), "user1", "batch1")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(txns) != 2 {
			t.Fatalf("Got %d transactions, want 2", len(txns))
		}

		first := txns[0]
		if first.UserID != "user1" || first.BatchID != "batch1" {
			t.Errorf("Scoping = %s/%s", first.UserID, first.BatchID)
		}
		if first.Description != "COFFEE PURCHASE" {
			t.Errorf("Description = %q", first.Description)
		}
		if first.Vendor != "Starbucks" {
			t.Errorf("Vendor = %q", first.Vendor)
		}
		if first.Amount != -4.50 {
			t.Errorf("Amount = %v", first.Amount)
		}
		if first.ID == "" || first.Hash == "" {
			t.Error("ID or hash not assigned")
		}
		if first.IsCategorized || first.Category != "" {
			t.Error("Imported transaction must be uncategorized")
		}

		wantDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		if !first.Date.Equal(wantDate) {
			t.Errorf("Date = %v, want %v", first.Date, wantDate)
		}

		if txns[1].Vendor != "" {
			t.Errorf("Second vendor = %q, want empty", txns[1].Vendor)
		}
	})

	t.Run("header aliases", func(t *testing.T) {
		input := strings.Join([]string{
			"Posted Date,Details,Merchant,Value",
			"03/10/2024,GAS STATION,Shell,-35.00",
		}, "\n")

		txns, err := parser.Parse(ctx, strings.NewReader(input), "user1", "batch1")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(txns) != 1 {
			t.Fatalf("Got %d transactions, want 1", len(txns))
		}
		if txns[0].Vendor != "Shell" {
			t.Errorf("Vendor = %q", txns[0].Vendor)
		}
		if txns[0].Date.Month() != time.March || txns[0].Date.Day() != 10 {
			t.Errorf("Date = %v", txns[0].Date)
		}
	})

	t.Run("currency formatting in amounts", func(t *testing.T) {
		input := strings.Join([]string{
			"date,description,amount",
			`2024-03-10,BIG PURCHASE,"$1,234.56"`,
		}, "\n")

		txns, err := parser.Parse(ctx, strings.NewReader(input), "user1", "batch1")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if txns[0].Amount != 1234.56 {
			t.Errorf("Amount = %v, want 1234.56", txns[0].Amount)
		}
	})

	t.Run("bad rows are skipped", func(t *testing.T) {
		input := strings.Join([]string{
			"Date,Description,Amount",
			"not-a-date,COFFEE,-4.50",
			"2024-03-10,,-4.50",
			"2024-03-10,COFFEE,not-a-number",
			"2024-03-11,GOOD ROW,-4.50",
		}, "\n")

		txns, err := parser.Parse(ctx, strings.NewReader(input), "user1", "batch1")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(txns) != 1 {
			t.Fatalf("Got %d transactions, want 1", len(txns))
		}
		if txns[0].Description != "GOOD ROW" {
			t.Errorf("Description = %q", txns[0].Description)
		}
	})

	t.Run("missing required column", func(t *testing.T) {
		input := "Date,Description\n2024-03-10,COFFEE\n"

		_, err := parser.Parse(ctx, strings.NewReader(input), "user1", "batch1")
		if !errors.Is(err, ErrMissingHeader) {
			t.Errorf("Got error %v, want ErrMissingHeader", err)
		}
	})

	t.Run("no usable rows", func(t *testing.T) {
		input := "Date,Description,Amount\n"

		_, err := parser.Parse(ctx, strings.NewReader(input), "user1", "batch1")
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("Got error %v, want ErrEmptyFile", err)
		}
	})
}
