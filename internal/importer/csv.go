// Package importer turns bank export files (CSV, OFX/QFX) into
// uncategorized transactions ready for the categorization engine.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/radup/fin-good/internal/model"
)

// CSV import errors.
var (
	ErrMissingHeader = errors.New("missing required CSV column")
	ErrEmptyFile     = errors.New("CSV file contains no transactions")
)

// Recognized header names per field, compared case-insensitively.
var csvHeaderAliases = map[string][]string{
	"date":        {"date", "transaction date", "posted date"},
	"description": {"description", "details", "memo", "name"},
	"vendor":      {"vendor", "merchant", "payee"},
	"amount":      {"amount", "value"},
}

// Date layouts tried in order when parsing the date column.
var csvDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02T15:04:05Z07:00",
}

// CSVParser parses CSV bank exports into uncategorized transactions. The
// column order is discovered from the header row; date, description and
// amount are required, vendor is optional.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads a CSV export and returns the contained transactions scoped
// to the given user and import batch. Rows that fail to parse are skipped
// with a warning rather than aborting the whole file.
func (p *CSVParser) Parse(_ context.Context, reader io.Reader, userID, batchID string) ([]model.Transaction, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	line := 1
	for {
		record, readErr := r.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, readErr)
		}

		txn, convErr := p.convertRecord(record, columns, userID, batchID)
		if convErr != nil {
			slog.Warn("Skipping unparseable CSV row",
				"line", line,
				"error", convErr)
			continue
		}
		transactions = append(transactions, txn)
	}

	if len(transactions) == 0 {
		return nil, ErrEmptyFile
	}

	slog.Info("Parsed CSV file", "total_transactions", len(transactions))

	return transactions, nil
}

// mapColumns resolves field names to column indexes from the header row.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		for field, aliases := range csvHeaderAliases {
			if _, ok := columns[field]; ok {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					columns[field] = i
					break
				}
			}
		}
	}

	for _, required := range []string{"date", "description", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}

	return columns, nil
}

func (p *CSVParser) convertRecord(record []string, columns map[string]int, userID, batchID string) (model.Transaction, error) {
	get := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseDate(get("date"))
	if err != nil {
		return model.Transaction{}, err
	}

	description := get("description")
	if description == "" {
		return model.Transaction{}, errors.New("empty description")
	}

	amountText := strings.ReplaceAll(get("amount"), ",", "")
	amountText = strings.TrimPrefix(amountText, "$")
	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", get("amount"), err)
	}

	txn := model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		BatchID:     batchID,
		Date:        date,
		Description: description,
		Vendor:      get("vendor"),
		Amount:      amount,
	}
	txn.Hash = txn.GenerateHash()

	return txn, nil
}

func parseDate(text string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}
