package domain_test

import (
	"testing"
	"time"

	"studylog/internal/modules/recovery/domain"
)

func TestSnapshotNameRoundTrip(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("JST", 9*60*60)
	taken := time.Date(2026, 3, 1, 9, 5, 7, 123456789, loc)
	name := domain.SnapshotName(taken)
	if name != "study_log_20260301_090507_123456.db" {
		t.Fatalf("unexpected name %s", name)
	}
	got, err := domain.ParseSnapshotName(name, loc)
	if err != nil {
		t.Fatalf("parse name: %v", err)
	}
	if !got.Equal(taken.Truncate(time.Microsecond)) {
		t.Fatalf("expected %v, got %v", taken.Truncate(time.Microsecond), got)
	}
}

func TestSnapshotNamesSortChronologically(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 23, 59, 59, 999_999_000, time.UTC)
	a := domain.SnapshotName(base)
	b := domain.SnapshotName(base.Add(time.Microsecond))
	if !(a < b) {
		t.Fatalf("expected %s < %s", a, b)
	}
}

func TestIsSnapshotNameRejectsForeignFiles(t *testing.T) {
	t.Parallel()
	for _, name := range []string{
		"backup_log.txt",
		"study_log_20260301_090507_123456.db.tmp",
		"study_log_20260301_090507.db",
		"study_log_2026xx01_090507_123456.db",
	} {
		if domain.IsSnapshotName(name) {
			t.Fatalf("%s must not be treated as a snapshot", name)
		}
	}
}

func TestParsePool(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.Pool{
		"":           domain.PoolShortTerm,
		"short_term": domain.PoolShortTerm,
		"long-term":  domain.PoolLongTerm,
		"redo":       domain.PoolRedo,
	}
	for input, want := range cases {
		got, err := domain.ParsePool(input)
		if err != nil || got != want {
			t.Fatalf("ParsePool(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := domain.ParsePool("archive"); err == nil {
		t.Fatalf("unknown pool must fail")
	}
}

func TestOlderBreaksTiesByName(t *testing.T) {
	t.Parallel()
	mod := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := domain.SnapshotRef{Name: "study_log_20260301_090000_000001.db", ModTime: mod}
	b := domain.SnapshotRef{Name: "study_log_20260301_090000_000002.db", ModTime: mod}
	if !domain.Older(a, b) || domain.Older(b, a) {
		t.Fatalf("equal mod times must fall back to name order")
	}
	c := domain.SnapshotRef{Name: "study_log_20260301_080000_000000.db", ModTime: mod.Add(time.Second)}
	if !domain.Older(b, c) {
		t.Fatalf("mod time must dominate name order")
	}
}
