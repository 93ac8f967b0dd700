package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studylog/internal/modules/recovery/domain"
	"studylog/internal/modules/recovery/service"
	apperrors "studylog/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestGatewaySnapshotsBeforeMutation(t *testing.T) {
	t.Parallel()
	store := newMemoryStore("v1")
	activity := &fakeActivity{days: map[string]bool{"2026-03-01": true}}
	gw := service.NewGateway(store, activity, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, nil)

	err := gw.Within(context.Background(), "Before break session.", func(context.Context) error {
		if len(store.pools[domain.PoolShortTerm]) != 1 {
			t.Fatalf("snapshot must exist before the mutation runs")
		}
		store.live = []byte("v2")
		return nil
	})
	if err != nil {
		t.Fatalf("within: %v", err)
	}
	if len(store.pools[domain.PoolLongTerm]) != 0 {
		t.Fatalf("day with entries must not take a daily snapshot")
	}
	if string(store.pools[domain.PoolShortTerm][0].data) != "v1" {
		t.Fatalf("snapshot must hold the pre-mutation state")
	}
}

func TestGatewayTakesDailySnapshotOncePerDay(t *testing.T) {
	t.Parallel()
	store := newMemoryStore("v1")
	activity := &fakeActivity{days: map[string]bool{}}
	clk := fixedClock{now: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)}
	store.clock.now = clk.now
	gw := service.NewGateway(store, activity, clk, nil)
	ctx := context.Background()

	noop := func(context.Context) error { return nil }
	if err := gw.Within(ctx, "Before daily summary update.", noop); err != nil {
		t.Fatalf("first mutation: %v", err)
	}
	if err := gw.Within(ctx, "Before adding a goal.", noop); err != nil {
		t.Fatalf("second mutation: %v", err)
	}
	if got := len(store.pools[domain.PoolLongTerm]); got != 1 {
		t.Fatalf("expected exactly one daily snapshot, got %d", got)
	}
	if store.calls[0] != "snapshot long_term "+domain.DescriptionDaily || store.calls[1] != "snapshot short_term Before daily summary update." {
		t.Fatalf("daily snapshot must precede the short-term one: %v", store.calls)
	}
}

func TestGatewayDailySnapshotAgainOnNextDay(t *testing.T) {
	t.Parallel()
	store := newMemoryStore("v1")
	store.pools[domain.PoolLongTerm] = []memorySnapshot{{ref: domain.SnapshotRef{
		Pool:    domain.PoolLongTerm,
		Path:    "long/yesterday",
		TakenAt: time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC),
	}}}
	gw := service.NewGateway(store, &fakeActivity{}, fixedClock{now: time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)}, nil)
	if err := gw.Within(context.Background(), "Before start session.", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("within: %v", err)
	}
	if got := len(store.pools[domain.PoolLongTerm]); got != 2 {
		t.Fatalf("expected a new daily snapshot, got %d", got)
	}
}

func TestGatewayAbortsMutationWhenSnapshotFails(t *testing.T) {
	t.Parallel()
	store := newMemoryStore("v1")
	store.failPool = domain.PoolShortTerm
	gw := service.NewGateway(store, &fakeActivity{days: map[string]bool{"2026-03-01": true}}, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, nil)

	ran := false
	err := gw.Within(context.Background(), "Before start session.", func(context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if ran {
		t.Fatalf("mutation must not run after a failed snapshot")
	}
}

func TestGatewayPropagatesActivityError(t *testing.T) {
	t.Parallel()
	store := newMemoryStore("v1")
	boom := errors.New("db closed")
	gw := service.NewGateway(store, &fakeActivity{err: boom}, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, nil)
	err := gw.Within(context.Background(), "x", func(context.Context) error {
		t.Fatalf("mutation must not run")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected activity error, got %v", err)
	}
}
