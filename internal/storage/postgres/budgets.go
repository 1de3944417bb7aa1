package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

const budgetColumns = `id, user_id, category, amount::text, period, start_date, created_at`

// CreateBudget inserts a budget for budget.UserID.
func (s *Store) CreateBudget(ctx context.Context, budget models.Budget) (models.Budget, error) {
	const query = `
		INSERT INTO budgets (user_id, category, amount, period, start_date)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING ` + budgetColumns
	row := s.pool.QueryRow(ctx, query, budget.UserID, budget.Category, budget.Amount.String(), budget.Period, budget.StartDate.Time)
	return scanBudget(row)
}

// GetBudget fetches one budget owned by userID.
func (s *Store) GetBudget(ctx context.Context, userID, id int64) (models.Budget, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	return scanBudget(row)
}

// ListBudgets returns the owner's budgets, optionally for one category.
func (s *Store) ListBudgets(ctx context.Context, userID int64, category string) ([]models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1`
	args := []any{userID}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
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
	const query = `
		UPDATE budgets
		SET category = $3, amount = $4::numeric, period = $5, start_date = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + budgetColumns
	row := s.pool.QueryRow(ctx, query, budget.ID, budget.UserID, budget.Category, budget.Amount.String(), budget.Period, budget.StartDate.Time)
	return scanBudget(row)
}

// DeleteBudget removes a budget owned by userID.
func (s *Store) DeleteBudget(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanBudget(row pgx.Row) (models.Budget, error) {
	var b models.Budget
	var amount string
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &amount, &b.Period, &b.StartDate.Time, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Budget{}, storage.ErrNotFound
		}
		return models.Budget{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Budget{}, fmt.Errorf("decode amount %q: %w", amount, err)
	}
	b.Amount = d
	b.StartDate = models.NewDate(b.StartDate.Time)
	return b, nil
}
