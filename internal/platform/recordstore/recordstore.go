// Package recordstore owns the SQLite file that holds every study log entry,
// goal and daily summary. The file is treated as one copyable unit: recovery
// code replaces it wholesale through Replace.
package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "studylog/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type Store struct {
	path string
	mu   sync.RWMutex
	db   *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	s := &Store{path: path}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	return s, nil
}

// open keeps the default rollback journal: a WAL sidecar would make a plain
// file copy an incomplete snapshot.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) Path() string {
	return s.path
}

// DB returns the current handle. Callers must not cache it across a Replace.
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Read runs fn while no Replace can swap the file underneath it.
func (s *Store) Read(fn func(path string) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.path)
}

// Replace closes the database, lets fn rewrite the file at Path and reopens
// it. The store is reopened even when fn fails so the process keeps working
// against whatever file is on disk.
func (s *Store) Replace(ctx context.Context, fn func(path string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("%w: close record store: %w", apperrors.ErrStorage, err)
		}
		s.db = nil
	}
	fnErr := fn(s.path)
	db, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: reopen record store: %w", apperrors.ErrStorage, err)
	}
	s.db = db
	return fnErr
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WithTx runs fn inside one SQL transaction so a multi-row change commits as
// a single unit.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	db := s.DB()
	if db == nil {
		return fmt.Errorf("%w: record store is closed", apperrors.ErrStorage)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
