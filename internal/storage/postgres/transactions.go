package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

const transactionColumns = `id, user_id, amount::text, type, category, description, date, created_at`

// CreateTransaction inserts a transaction for txn.UserID.
func (s *Store) CreateTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	const query = `
		INSERT INTO transactions (user_id, amount, type, category, description, date)
		VALUES ($1, $2::numeric, $3, $4, $5, $6)
		RETURNING ` + transactionColumns
	row := s.pool.QueryRow(ctx, query, txn.UserID, txn.Amount.String(), txn.Type, txn.Category, txn.Description, txn.Date.Time)
	return scanTransaction(row)
}

// GetTransaction fetches one transaction owned by userID.
func (s *Store) GetTransaction(ctx context.Context, userID, id int64) (models.Transaction, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	return scanTransaction(row)
}

// ListTransactions returns the owner's transactions matching filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]models.Transaction, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if !filter.From.IsZero() {
		add("date >= $%d", filter.From.Time)
	}
	if !filter.To.IsZero() {
		add("date <= $%d", filter.To.Time)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

// UpdateTransaction replaces the mutable fields of a transaction owned by txn.UserID.
func (s *Store) UpdateTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	const query = `
		UPDATE transactions
		SET amount = $3::numeric, type = $4, category = $5, description = $6, date = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + transactionColumns
	row := s.pool.QueryRow(ctx, query, txn.ID, txn.UserID, txn.Amount.String(), txn.Type, txn.Category, txn.Description, txn.Date.Time)
	return scanTransaction(row)
}

// DeleteTransaction removes a transaction owned by userID.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var txn models.Transaction
	var amount string
	if err := row.Scan(&txn.ID, &txn.UserID, &amount, &txn.Type, &txn.Category, &txn.Description, &txn.Date.Time, &txn.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("decode amount %q: %w", amount, err)
	}
	txn.Amount = d
	txn.Date = models.NewDate(txn.Date.Time)
	return txn, nil
}
