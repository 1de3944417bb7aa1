package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/fintrack-be/internal/models"
)

// ErrNotFound indicates a record does not exist or is not owned by the caller.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// TransactionFilter narrows a transaction listing. Zero values mean "any".
// From and To are inclusive.
type TransactionFilter struct {
	Type     string
	Category string
	From     models.Date
	To       models.Date
	Limit    int
}

// UserStore captures persistence operations for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	// PurgeUserData removes every transaction and budget keyed to userID.
	PurgeUserData(ctx context.Context, userID int64) error
}

// TransactionStore persists transactions. Every method is scoped to the owner.
// Listings are ordered by date, then creation time, newest first.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (models.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
}

// BudgetStore persists budgets. Listings are ordered by start date, newest first.
type BudgetStore interface {
	CreateBudget(ctx context.Context, budget models.Budget) (models.Budget, error)
	GetBudget(ctx context.Context, userID, id int64) (models.Budget, error)
	ListBudgets(ctx context.Context, userID int64, category string) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, budget models.Budget) (models.Budget, error)
	DeleteBudget(ctx context.Context, userID, id int64) error
}

// Store is the full persistence surface used by the HTTP layer.
type Store interface {
	UserStore
	TransactionStore
	BudgetStore
	Close()
}
