// Package sqlite provides a SQLite-backed implementation of the storage
// interface. Snapshots are stored as JSON next to the columns listings sort
// by.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/trackmyhand/internal/model"
	"github.com/mcoot/trackmyhand/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists games and users in SQLite
type Store struct {
	sqlDB *sql.DB
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

// Open opens a SQLite store at path and applies the schema
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Game operations

func (s *Store) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (id, sort_at, data) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET sort_at = excluded.sort_at, data = excluded.data`,
		string(game.ID), game.SortTime().UTC().UnixMilli(), string(data),
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, string(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}

	var game model.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Store) DeleteGame(ctx context.Context, id model.GameID) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

func (s *Store) ListGames(ctx context.Context, limit int) ([]*model.Game, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT data FROM games ORDER BY sort_at DESC, id ASC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return scanAll[model.Game](rows)
}

func (s *Store) CountGames(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM games`)
}

// User operations

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, total_profit_cents, data) VALUES (?, ?, ?)`,
		string(user.ID), cents(user), string(data),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, total_profit_cents, data) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET total_profit_cents = excluded.total_profit_cents, data = excluded.data`,
		string(user.ID), cents(user), string(data),
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM users WHERE id = ?`, string(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT data FROM users ORDER BY total_profit_cents DESC, id ASC LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return scanAll[model.User](rows)
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (s *Store) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// scanAll decodes the single JSON column of every row
func scanAll[T any](rows *sql.Rows) ([]*T, error) {
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

// sqlLimit maps "no limit" to SQLite's -1
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func cents(user *model.User) int64 {
	return user.TotalProfit.Shift(model.AmountPlaces).IntPart()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
