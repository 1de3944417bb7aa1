package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

const budgetColumns = `id, user_id, category, amount, period, start_date, created_at`

// CreateBudget inserts a budget for budget.UserID.
func (s *Store) CreateBudget(ctx context.Context, budget models.Budget) (models.Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, category, amount, period, start_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+budgetColumns,
		budget.UserID, budget.Category, budget.Amount.String(), budget.Period, budget.StartDate.String(), s.timestamp())
	return scanBudget(row)
}

// GetBudget fetches one budget owned by userID.
func (s *Store) GetBudget(ctx context.Context, userID, id int64) (models.Budget, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	return scanBudget(row)
}

// ListBudgets returns the owner's budgets, optionally for one category.
func (s *Store) ListBudgets(ctx context.Context, userID int64, category string) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBudget replaces the mutable fields of a budget owned by budget.UserID.
func (s *Store) UpdateBudget(ctx context.Context, budget models.Budget) (models.Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE budgets
		SET category = ?, amount = ?, period = ?, start_date = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+budgetColumns,
		budget.Category, budget.Amount.String(), budget.Period, budget.StartDate.String(), budget.ID, budget.UserID)
	return scanBudget(row)
}

// DeleteBudget removes a budget owned by userID.
func (s *Store) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	} else if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanBudget(row scanner) (models.Budget, error) {
	var (
		b         models.Budget
		amount    string
		startDate string
		createdAt string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &amount, &b.Period, &startDate, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Budget{}, storage.ErrNotFound
		}
		return models.Budget{}, err
	}
	var err error
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Budget{}, fmt.Errorf("decode amount %q: %w", amount, err)
	}
	if b.StartDate, err = models.ParseDate(startDate); err != nil {
		return models.Budget{}, fmt.Errorf("decode start_date: %w", err)
	}
	if b.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Budget{}, fmt.Errorf("decode created_at: %w", err)
	}
	return b, nil
}
