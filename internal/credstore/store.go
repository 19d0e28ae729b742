// Package credstore persists the admin session (bearer token and login)
// between CLI invocations. It stores credential state only; the catalog
// itself is never cached locally.
package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/paraflightlog/wingadmin/internal/credstore/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// ErrNoSession is returned when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// Session is a persisted credential.
type Session struct {
	ID        string
	Token     string
	Login     string
	CreatedAt time.Time
}

// Store manages the local SQLite session database.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	path   string
}

// Open opens or creates a session store at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("credstore: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("credstore: run migrations: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, schemaVersion)
	return err
}

// SaveSession replaces any stored session with a new one.
func (s *Store) SaveSession(token, login string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("credstore: store is closed")
	}

	session := Session{
		ID:        ulid.Make().String(),
		Token:     token,
		Login:     login,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("credstore: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	if _, err := tx.Exec(`DELETE FROM session`); err != nil {
		return nil, fmt.Errorf("credstore: clear session: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO session (id, token, login, created_at) VALUES (?, ?, ?, ?)
	`, session.ID, session.Token, session.Login, session.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("credstore: insert session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("credstore: commit: %w", err)
	}
	return &session, nil
}

// Session returns the stored session, or ErrNoSession.
func (s *Store) Session() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("credstore: store is closed")
	}

	row := s.db.QueryRow(`SELECT id, token, login, created_at FROM session LIMIT 1`)

	var session Session
	var createdAt string
	err := row.Scan(&session.ID, &session.Token, &session.Login, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read session: %w", err)
	}

	session.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("credstore: parse created_at: %w", err)
	}
	return &session, nil
}

// Clear removes the stored session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("credstore: store is closed")
	}
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("credstore: clear session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
