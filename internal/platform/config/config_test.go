package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"studylog/internal/platform/config"
)

func TestNewDerivesLayoutFromHome(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	cfg, err := config.New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(home, "study_log.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
	if cfg.JournalPath != filepath.Join(home, "db_backups", "backup_log.txt") {
		t.Fatalf("unexpected journal path %s", cfg.JournalPath)
	}
	if cfg.ShortTermCap != 100 || cfg.LongTermCap != 30 || cfg.RedoCap != 10 {
		t.Fatalf("unexpected default caps %d/%d/%d", cfg.ShortTermCap, cfg.LongTermCap, cfg.RedoCap)
	}
}

func TestNewReadsYAMLOverrides(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	body := "timezone: Asia/Tokyo\nlog_level: debug\nretention:\n  short_term: 5\n  redo: 2\n"
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ShortTermCap != 5 || cfg.LongTermCap != 30 || cfg.RedoCap != 2 {
		t.Fatalf("unexpected caps %d/%d/%d", cfg.ShortTermCap, cfg.LongTermCap, cfg.RedoCap)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %s", cfg.LogLevel)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Asia/Tokyo" {
		t.Fatalf("expected Asia/Tokyo, got %v (%v)", loc, err)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty home must fail")
	}
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("retention:\n  long_term: -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(home); err == nil {
		t.Fatalf("negative retention must fail")
	}
	other := t.TempDir()
	if err := os.WriteFile(filepath.Join(other, "config.yaml"), []byte("timezone: Nowhere/Land\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(other); err == nil {
		t.Fatalf("unknown timezone must fail")
	}
}
