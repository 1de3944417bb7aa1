// Package alerts raises BudgetExceeded events when an expense pushes a
// budget past its limit, and carries them over AMQP.
package alerts

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/reports"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

// Publisher delivers alerts somewhere.
type Publisher interface {
	Publish(ctx context.Context, msg BudgetExceeded) error
}

// LogPublisher writes alerts to the logger instead of a broker.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, msg BudgetExceeded) error {
	p.logger.Warn().
		Int64("user_id", msg.UserID).
		Int64("budget_id", msg.BudgetID).
		Str("category", msg.Category).
		Str("limit", msg.Limit.String()).
		Str("spent", msg.Spent.String()).
		Msg("budget exceeded")
	return nil
}

// Checker evaluates a user's budgets after an expense is written.
type Checker struct {
	users     storage.UserStore
	budgets   storage.BudgetStore
	engine    *reports.Engine
	publisher Publisher
	loc       *time.Location
	now       func() time.Time
}

// NewChecker creates a Checker. loc decides which day "today" is.
func NewChecker(users storage.UserStore, budgets storage.BudgetStore, engine *reports.Engine, publisher Publisher, loc *time.Location) *Checker {
	if loc == nil {
		loc = time.Local
	}
	return &Checker{
		users:     users,
		budgets:   budgets,
		engine:    engine,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// CheckExpense publishes an alert for every budget in txn's category that
// is over its limit, provided the owner has budget alerts switched on.
// Failures are logged and never returned; alerts must not fail the write.
func (c *Checker) CheckExpense(ctx context.Context, txn models.Transaction) int {
	if c == nil || txn.Type != models.TypeExpense {
		return 0
	}
	logger := zerolog.Ctx(ctx)

	user, err := c.users.FindByID(ctx, txn.UserID)
	if err != nil {
		logger.Error().Err(err).Msg("budget alert: load user")
		return 0
	}
	if !user.Preferences.Enabled(models.PrefBudgetAlerts) {
		return 0
	}

	budgets, err := c.budgets.ListBudgets(ctx, txn.UserID, txn.Category)
	if err != nil {
		logger.Error().Err(err).Msg("budget alert: load budgets")
		return 0
	}
	now := c.now()
	usage, err := c.engine.Usage(ctx, txn.UserID, budgets, models.NewDate(now.In(c.loc)))
	if err != nil {
		logger.Error().Err(err).Msg("budget alert: compute usage")
		return 0
	}

	sent := 0
	for _, u := range usage {
		if u.Spent.LessThanOrEqual(u.Amount) {
			continue
		}
		if err := c.publisher.Publish(ctx, NewBudgetExceeded(u, now)); err != nil {
			logger.Error().Err(err).Int64("budget_id", u.ID).Msg("budget alert: publish")
			continue
		}
		sent++
	}
	return sent
}
