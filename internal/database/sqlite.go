package repository

import (
	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/sl"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/glebarez/go-sqlite"
)

// SQLite keeps sessions and interaction history in a single database file.
type SQLite struct {
	DB  *sql.DB
	ttl time.Duration
	now func() time.Time
	log *slog.Logger
}

// NewSQLite opens the database at path (":memory:" works) and creates the
// tables. A positive ttl hides sessions idle for longer.
func NewSQLite(path string, ttl time.Duration, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writes
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			user_id TEXT PRIMARY KEY,
			chain TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			action TEXT,
			value TEXT,
			name TEXT,
			view TEXT,
			ordinal INTEGER,
			caller TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS interactions_user ON interactions (user_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS api_keys (
			username TEXT PRIMARY KEY,
			api_key TEXT NOT NULL UNIQUE
		);`,
	}
	for _, q := range queries {
		if _, err = db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite migrate: %w", err)
		}
	}

	return &SQLite{
		DB:  db,
		ttl: ttl,
		now: time.Now,
		log: logger.With(sl.Module("sqlite")),
	}, nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

func (s *SQLite) SaveChain(ctx context.Context, c *chat.Chain) error {
	c.UpdatedAt = s.now()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding chain: %w", err)
	}

	query := `INSERT INTO chat_sessions (user_id, chain, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET chain = excluded.chain, updated_at = excluded.updated_at`
	if _, err = s.DB.ExecContext(ctx, query, c.UserID, string(data), c.UpdatedAt.UnixNano()); err != nil {
		return fmt.Errorf("sqlite save chain: %w", err)
	}
	return nil
}

func (s *SQLite) LoadChain(ctx context.Context, userID string) (*chat.Chain, error) {
	query := `SELECT chain, updated_at FROM chat_sessions WHERE user_id = ?`

	var data string
	var updated int64
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&data, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite load chain: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(0, updated)) > s.ttl {
		return nil, s.DeleteChain(ctx, userID)
	}

	var c chat.Chain
	if err = json.Unmarshal([]byte(data), &c); err != nil {
		s.log.With(
			slog.String("user_id", userID),
			sl.Err(err),
		).Warn("undecodable chain")
		return &chat.Chain{UserID: userID}, nil
	}
	return &c, nil
}

func (s *SQLite) DeleteChain(ctx context.Context, userID string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM chat_sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite delete chain: %w", err)
	}
	return nil
}

// SaveInteraction appends a history record and keeps the newest records of the user.
func (s *SQLite) SaveInteraction(rec entity.InteractionRecord) error {
	query := `INSERT INTO interactions (user_id, action, value, name, view, ordinal, caller, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.Exec(query, rec.UserID, rec.Action, rec.Value, rec.Name, rec.View, rec.Ordinal, rec.Caller, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("sqlite insert interaction: %w", err)
	}

	trim := `DELETE FROM interactions WHERE user_id = ? AND id NOT IN (
		SELECT id FROM interactions WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?)`
	if _, err = s.DB.Exec(trim, rec.UserID, rec.UserID, historyLimit); err != nil {
		return fmt.Errorf("sqlite trim interactions: %w", err)
	}
	return nil
}

// GetInteractions returns the user's history, newest first.
func (s *SQLite) GetInteractions(userID string, limit, offset int) ([]entity.InteractionRecord, error) {
	query := `SELECT user_id, action, value, name, view, ordinal, caller, created_at FROM interactions
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.DB.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite find interactions: %w", err)
	}
	defer rows.Close()

	var records []entity.InteractionRecord
	for rows.Next() {
		var rec entity.InteractionRecord
		var created int64
		if err = rows.Scan(&rec.UserID, &rec.Action, &rec.Value, &rec.Name, &rec.View, &rec.Ordinal, &rec.Caller, &created); err != nil {
			return nil, fmt.Errorf("sqlite scan interaction: %w", err)
		}
		rec.CreatedAt = time.Unix(0, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CheckApiKey returns the owner of an issued API key.
func (s *SQLite) CheckApiKey(key string) (string, error) {
	var username string
	err := s.DB.QueryRow(`SELECT username FROM api_keys WHERE api_key = ?`, key).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && username == "") {
		return "", fmt.Errorf("api key not found")
	}
	if err != nil {
		return "", fmt.Errorf("sqlite query: %w", err)
	}
	return username, nil
}

// GenerateApiKey returns the key issued to username, issuing one if needed.
func (s *SQLite) GenerateApiKey(username string) (string, error) {
	var key string
	err := s.DB.QueryRow(`SELECT api_key FROM api_keys WHERE username = ?`, username).Scan(&key)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("sqlite query: %w", err)
	}

	key = uuid.NewString()
	if _, err = s.DB.Exec(`INSERT INTO api_keys (username, api_key) VALUES (?, ?)`, username, key); err != nil {
		return "", fmt.Errorf("sqlite insert: %w", err)
	}
	return key, nil
}
