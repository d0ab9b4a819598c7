package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/radup/fin-good/internal/common"
	"github.com/radup/fin-good/internal/model"
)

const transactionColumns = `id, user_id, batch_id, hash, date, description,
	vendor, amount, category, subcategory, is_categorized, confidence, created_at`

// SaveTransactions persists imported transactions, skipping duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}
	return saveTransactions(ctx, s.db, transactions)
}

// SaveTransactions persists transactions within the transaction.
func (t *sqliteTx) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}
	return saveTransactions(ctx, t.tx, transactions)
}

func saveTransactions(ctx context.Context, q querier, transactions []model.Transaction) (int, error) {
	query := `
		INSERT OR IGNORE INTO transactions (
			id, user_id, batch_id, hash, date, description, vendor, amount,
			category, subcategory, is_categorized, confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	saved := 0
	for i := range transactions {
		txn := &transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		result, err := q.ExecContext(ctx, query,
			txn.ID, txn.UserID, nullable(txn.BatchID), txn.Hash,
			txn.Date, txn.Description, nullable(txn.Vendor), txn.Amount,
			nullable(txn.Category), nullable(txn.Subcategory),
			txn.IsCategorized, txn.Confidence,
		)
		if err != nil {
			return saved, fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return saved, fmt.Errorf("failed to get rows affected: %w", err)
		}
		saved += int(affected)
	}

	return saved, nil
}

// GetUncategorizedTransactions returns the user's uncategorized
// transactions, optionally restricted to one import batch.
func (s *SQLiteStorage) GetUncategorizedTransactions(ctx context.Context, userID, batchID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getUncategorizedTransactions(ctx, s.db, userID, batchID)
}

// GetUncategorizedTransactions returns uncategorized transactions within the transaction.
func (t *sqliteTx) GetUncategorizedTransactions(ctx context.Context, userID, batchID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getUncategorizedTransactions(ctx, t.tx, userID, batchID)
}

func getUncategorizedTransactions(ctx context.Context, q querier, userID, batchID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ? AND is_categorized = 0
	`
	args := []any{userID}
	if batchID != "" {
		query += " AND batch_id = ?"
		args = append(args, batchID)
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get uncategorized transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionByID returns the user's transaction with the given ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, s.db, userID, id)
}

// GetTransactionByID returns a transaction within the transaction.
func (t *sqliteTx) GetTransactionByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, t.tx, userID, id)
}

func getTransactionByID(ctx context.Context, q querier, userID, id string) (*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ? AND user_id = ?
	`

	row := q.QueryRowContext(ctx, query, id, userID)
	txn, err := scanTransactionRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}

	return txn, nil
}

// UpdateTransaction writes back a transaction's categorization fields.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return updateTransaction(ctx, s.db, txn)
}

// UpdateTransaction updates a transaction within the transaction.
func (t *sqliteTx) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return updateTransaction(ctx, t.tx, txn)
}

func updateTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	query := `
		UPDATE transactions SET
			category = ?, subcategory = ?, is_categorized = ?, confidence = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := q.ExecContext(ctx, query,
		nullable(txn.Category), nullable(txn.Subcategory),
		txn.IsCategorized, txn.Confidence,
		txn.ID, txn.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrNotFound)
	}

	return nil
}

// GetCategorizedPairs returns the distinct (category, subcategory) pairs
// across the user's categorized transactions.
func (s *SQLiteStorage) GetCategorizedPairs(ctx context.Context, userID string) ([]model.CategoryPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getCategorizedPairs(ctx, s.db, userID)
}

// GetCategorizedPairs returns categorized pairs within the transaction.
func (t *sqliteTx) GetCategorizedPairs(ctx context.Context, userID string) ([]model.CategoryPair, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return getCategorizedPairs(ctx, t.tx, userID)
}

func getCategorizedPairs(ctx context.Context, q querier, userID string) ([]model.CategoryPair, error) {
	query := `
		SELECT DISTINCT category, COALESCE(subcategory, '')
		FROM transactions
		WHERE user_id = ? AND is_categorized = 1
		ORDER BY category, subcategory
	`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categorized pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pairs []model.CategoryPair
	for rows.Next() {
		var pair model.CategoryPair
		if err := rows.Scan(&pair.Category, &pair.Subcategory); err != nil {
			return nil, fmt.Errorf("failed to scan category pair: %w", err)
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category pairs: %w", err)
	}

	return pairs, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(rows *sql.Rows) (*model.Transaction, error) {
	return scanTransactionRow(rows)
}

func scanTransactionRow(row scanner) (*model.Transaction, error) {
	var txn model.Transaction
	var batchID, vendor, category, subcategory sql.NullString

	err := row.Scan(
		&txn.ID, &txn.UserID, &batchID, &txn.Hash, &txn.Date, &txn.Description,
		&vendor, &txn.Amount, &category, &subcategory,
		&txn.IsCategorized, &txn.Confidence, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.BatchID = batchID.String
	txn.Vendor = vendor.String
	txn.Category = category.String
	txn.Subcategory = subcategory.String

	return &txn, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
