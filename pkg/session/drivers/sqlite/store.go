// Package sqlite persists the client session in a local SQLite file so a
// login survives process restarts. Each of the three session entries carries
// an expiry set when the session is written; swapping the access token
// inherits the refresh token's expiry. Reads treat the entries as one unit,
// so a single stale entry means there is no session.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/lessondesk/pkg/session"
	_ "modernc.org/sqlite"
)

// DefaultTTL is how long an entry survives without being rewritten.
const DefaultTTL = 7 * 24 * time.Hour

type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

var _ session.Store = (*Store)(nil)

type Option func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// DSN builds a modernc.org/sqlite data source name for a file path.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

func NewStore(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open creates the store at path and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	s, err := NewStore(DSN(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) User(ctx context.Context) (session.User, error) {
	var raw string
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		stale, err := s.expired(ctx, tx)
		if err != nil || stale {
			return err
		}
		raw, err = s.get(ctx, tx, session.EntryUser)
		return err
	})
	if err != nil {
		return session.User{}, err
	}
	if raw == "" {
		return session.User{}, session.ErrNoSession
	}

	var u session.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return session.User{}, fmt.Errorf("decode stored user: %w", err)
	}
	return u, nil
}

func (s *Store) SetUser(ctx context.Context, u session.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.purgeExpired(ctx, tx); err != nil {
			return err
		}
		return s.put(ctx, tx, session.EntryUser, string(raw))
	})
}

func (s *Store) Tokens(ctx context.Context) (session.Tokens, error) {
	var t session.Tokens
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		stale, err := s.expired(ctx, tx)
		if err != nil || stale {
			return err
		}
		if t.Access, err = s.get(ctx, tx, session.EntryAccessToken); err != nil {
			return err
		}
		t.Refresh, err = s.get(ctx, tx, session.EntryRefreshToken)
		return err
	})
	return t, err
}

// SetTokens writes both entries in one transaction and starts a new expiry
// window for them. An empty value removes the entry. Entries left over from
// an expired session are dropped first.
func (s *Store) SetTokens(ctx context.Context, t session.Tokens) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.purgeExpired(ctx, tx); err != nil {
			return err
		}
		if err := s.putOrDelete(ctx, tx, session.EntryAccessToken, t.Access); err != nil {
			return err
		}
		return s.putOrDelete(ctx, tx, session.EntryRefreshToken, t.Refresh)
	})
}

// SetAccessToken swaps the access token. It expires together with the
// refresh token; without one it gets a fresh window. Empty removes the entry.
func (s *Store) SetAccessToken(ctx context.Context, access string) error {
	if access == "" {
		return s.putOrDelete(ctx, s.db, session.EntryAccessToken, "")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_entries (name, value, expires_at)
		 VALUES (?, ?, COALESCE((SELECT expires_at FROM session_entries WHERE name = ?), ?))
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		session.EntryAccessToken, access, session.EntryRefreshToken, s.now().Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", session.EntryAccessToken, err)
	}
	return nil
}

// Logout removes all three entries in a single statement.
func (s *Store) Logout(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_entries WHERE name IN (?, ?, ?)`,
		session.EntryUser, session.EntryAccessToken, session.EntryRefreshToken,
	)
	return err
}

// DeleteExpired purges entries past their expiry and returns how many went.
// One stale entry takes the rest of the session with it.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		n, err = s.deleteExpired(ctx, tx)
		return err
	})
	return n, err
}

// WithTx executes fn within a transaction, rolling back on error.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// get returns "" for missing or expired entries.
func (s *Store) get(ctx context.Context, q execQuerier, name string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM session_entries WHERE name = ? AND expires_at > ?`,
		name, s.now().Unix(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}

// expired reports whether any session entry is past its expiry.
func (s *Store) expired(ctx context.Context, q execQuerier) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_entries WHERE name IN (?, ?, ?) AND expires_at <= ?`,
		session.EntryUser, session.EntryAccessToken, session.EntryRefreshToken, s.now().Unix(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check session expiry: %w", err)
	}
	return n > 0, nil
}

func (s *Store) purgeExpired(ctx context.Context, q execQuerier) error {
	_, err := s.deleteExpired(ctx, q)
	return err
}

func (s *Store) deleteExpired(ctx context.Context, q execQuerier) (int64, error) {
	stale, err := s.expired(ctx, q)
	if err != nil || !stale {
		return 0, err
	}
	res, err := q.ExecContext(ctx,
		`DELETE FROM session_entries WHERE name IN (?, ?, ?)`,
		session.EntryUser, session.EntryAccessToken, session.EntryRefreshToken,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired session: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) put(ctx context.Context, q execQuerier, name, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO session_entries (name, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		name, value, s.now().Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) putOrDelete(ctx context.Context, q execQuerier, name, value string) error {
	if value != "" {
		return s.put(ctx, q, name, value)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM session_entries WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
