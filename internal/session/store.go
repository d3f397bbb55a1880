package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession indicates no stored session exists for the account.
var ErrNoSession = errors.New("session: no stored session")

// Session is a persisted eMODUL API session. The token is a bearer token
// issued by the authentication endpoint and remains valid until the cloud
// invalidates it, at which point the bridge re-authenticates and replaces
// the stored row.
type Session struct {
	ID        string
	Username  string
	UserID    string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists API sessions in SQLite so restarts do not require
// re-authentication against the cloud.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	user_id    TEXT NOT NULL,
	token      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// NewStore creates a session store and ensures its schema exists.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the session for the given account. One row is kept per
// username; re-authentication overwrites the previous token.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess.Username == "" {
		return fmt.Errorf("session: username is required")
	}
	if sess.ID == "" {
		sess.ID = "sess-" + uuid.NewString()[:16]
	}

	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, user_id, token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
			user_id = excluded.user_id,
			token = excluded.token,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Username, sess.UserID, sess.Token, now, now,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

// Load retrieves the stored session for the given account.
// Returns ErrNoSession when none exists.
func (s *Store) Load(ctx context.Context, username string) (*Session, error) {
	var sess Session
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, user_id, token, created_at, updated_at
		 FROM sessions WHERE username = ?`, username,
	).Scan(&sess.ID, &sess.Username, &sess.UserID, &sess.Token, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	sess.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &sess, nil
}

// Clear removes the stored session for the given account. Clearing a
// missing session is not an error.
func (s *Store) Clear(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE username = ?`, username,
	); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
