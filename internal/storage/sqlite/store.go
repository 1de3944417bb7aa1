// Package sqlite is a single-file persistence backend for local development
// and tests. It mirrors the postgres store's behaviour.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hongminglow/fintrack-be/internal/models"
	"github.com/hongminglow/fintrack-be/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var _ storage.Store = (*Store)(nil)

// Store provides SQLite-backed persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (creating if needed) the database at path and runs migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps SQLite free of SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

const userColumns = `id, email, name, avatar, preferences, password_hash, created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return models.User{}, fmt.Errorf("encode preferences: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, avatar, preferences, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		user.Email, user.Name, user.Avatar, string(prefs), user.PasswordHash, s.timestamp())
	created, err := scanUser(row)
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// PurgeUserData deletes every transaction and budget owned by userID.
func (s *Store) PurgeUserData(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("purge transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("purge budgets: %w", err)
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var (
		user      models.User
		avatar    sql.NullString
		prefs     string
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &avatar, &prefs, &user.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	if avatar.Valid {
		user.Avatar = &avatar.String
	}
	if err := json.Unmarshal([]byte(prefs), &user.Preferences); err != nil {
		return models.User{}, fmt.Errorf("decode preferences: %w", err)
	}
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return models.User{}, fmt.Errorf("decode created_at: %w", err)
	}
	user.CreatedAt = ts
	return user, nil
}
