package recordstore_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"studylog/internal/platform/recordstore"
)

func openStore(t *testing.T) *recordstore.Store {
	t.Helper()
	store, err := recordstore.Open(context.Background(), filepath.Join(t.TempDir(), "data", "study_log.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenCreatesTables(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	for _, table := range []string{"study_logs", "daily_summaries", "goals"} {
		var name string
		err := store.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenAddsMissingOptionalColumns(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}
	if _, err := legacy.Exec(`CREATE TABLE study_logs (id INTEGER PRIMARY KEY AUTOINCREMENT, event_type TEXT NOT NULL, subject TEXT, content TEXT, start_time TEXT NOT NULL, end_time TEXT, duration_minutes INTEGER)`); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	_ = legacy.Close()

	store, err := recordstore.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if _, err := store.DB().Exec(`INSERT INTO study_logs (event_type, start_time, summary, memo, impression) VALUES ('START', '2026-03-01 09:00:00', 's', 'm', 'i')`); err != nil {
		t.Fatalf("insert with optional columns: %v", err)
	}
}

func TestReplaceSwapsFileAndReopens(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	ctx := context.Background()
	if _, err := store.DB().Exec(`INSERT INTO daily_summaries (date, summary) VALUES ('2026-03-01', 'before')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	saved, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read live file: %v", err)
	}
	if _, err := store.DB().Exec(`UPDATE daily_summaries SET summary = 'after'`); err != nil {
		t.Fatalf("update: %v", err)
	}

	err = store.Replace(ctx, func(path string) error {
		return os.WriteFile(path, saved, 0o644)
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	var summary string
	if err := store.DB().QueryRow(`SELECT summary FROM daily_summaries WHERE date = '2026-03-01'`).Scan(&summary); err != nil {
		t.Fatalf("query after replace: %v", err)
	}
	if summary != "before" {
		t.Fatalf("expected restored summary, got %q", summary)
	}
	current, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read live file: %v", err)
	}
	if !bytes.Equal(current, saved) {
		t.Fatalf("reopen must not rewrite the restored file")
	}
}

func TestReplaceReopensWhenCallbackFails(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	boom := errors.New("copy failed")
	if err := store.Replace(context.Background(), func(string) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if err := store.DB().Ping(); err != nil {
		t.Fatalf("store must be usable after failed replace: %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	boom := errors.New("abort")
	err := store.WithTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO daily_summaries (date, summary) VALUES ('2026-03-02', 'x')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected abort error, got %v", err)
	}
	var n int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM daily_summaries`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}
