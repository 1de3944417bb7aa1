package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

const transactionColumns = `id, user_id, amount, type, category, description, date, created_at`

// CreateTransaction inserts a transaction for txn.UserID.
func (s *Store) CreateTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, amount, type, category, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+transactionColumns,
		txn.UserID, txn.Amount.String(), txn.Type, txn.Category, txn.Description, txn.Date.String(), s.timestamp())
	return scanTransaction(row)
}

// GetTransaction fetches one transaction owned by userID.
func (s *Store) GetTransaction(ctx context.Context, userID, id int64) (models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

// ListTransactions returns the owner's transactions matching filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]models.Transaction, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if !filter.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, filter.To.String())
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	row := s.db.QueryRowContext(ctx, `
		UPDATE transactions
		SET amount = ?, type = ?, category = ?, description = ?, date = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+transactionColumns,
		txn.Amount.String(), txn.Type, txn.Category, txn.Description, txn.Date.String(), txn.ID, txn.UserID)
	return scanTransaction(row)
}

// DeleteTransaction removes a transaction owned by userID.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	} else if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTransaction(row scanner) (models.Transaction, error) {
	var (
		txn       models.Transaction
		amount    string
		date      string
		createdAt string
	)
	if err := row.Scan(&txn.ID, &txn.UserID, &amount, &txn.Type, &txn.Category, &txn.Description, &date, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, err
	}
	var err error
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Transaction{}, fmt.Errorf("decode amount %q: %w", amount, err)
	}
	if txn.Date, err = models.ParseDate(date); err != nil {
		return models.Transaction{}, fmt.Errorf("decode date: %w", err)
	}
	if txn.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Transaction{}, fmt.Errorf("decode created_at: %w", err)
	}
	return txn, nil
}
