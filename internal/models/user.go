package models

import "time"

// Preference keys set on every new account.
const (
	PrefCurrency      = "currency"
	PrefEmailAlerts   = "email_alerts"
	PrefWeeklyReports = "weekly_reports"
	PrefBudgetAlerts  = "budget_alerts"
)

// Preferences maps preference keys to JSON values.
type Preferences map[string]any

// DefaultPreferences returns the preference set assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		PrefCurrency:      "USD",
		PrefEmailAlerts:   true,
		PrefWeeklyReports: false,
		PrefBudgetAlerts:  true,
	}
}

// Enabled reports whether a boolean preference is switched on.
func (p Preferences) Enabled(key string) bool {
	v, ok := p[key].(bool)
	return ok && v
}

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Avatar       *string     `json:"avatar"`
	Preferences  Preferences `json:"preferences"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}
