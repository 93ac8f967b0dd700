package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"studylog/internal/modules/recovery/domain"
	"studylog/internal/modules/recovery/service"
)

func TestConcurrentUndosEachConsumeOneSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore("v1")
	for _, next := range []string{"v2", "v3"} {
		if _, err := store.Snapshot(ctx, domain.PoolShortTerm, "mutation"); err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		store.live = []byte(next)
	}
	gw := service.NewGateway(store, &fakeActivity{}, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, nil)
	svc := service.NewRecoveryService(store, nil, service.SharedWith(gw))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Undo(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	if string(store.live) != "v1" {
		t.Fatalf("two undos must walk back two steps, live=%s", store.live)
	}
	if n := len(store.pools[domain.PoolShortTerm]); n != 0 {
		t.Fatalf("expected an empty short-term pool, got %d", n)
	}
	if n := len(store.pools[domain.PoolRedo]); n != 2 {
		t.Fatalf("expected two redo snapshots, got %d", n)
	}
}

func TestUndoWaitsForGuardedMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore("v1")
	gw := service.NewGateway(store, &fakeActivity{days: map[string]bool{"2026-03-01": true}}, fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, nil)
	svc := service.NewRecoveryService(store, nil, service.SharedWith(gw))

	entered := make(chan struct{})
	release := make(chan struct{})
	mutated := make(chan error, 1)
	go func() {
		mutated <- gw.Within(ctx, "Before start session.", func(context.Context) error {
			close(entered)
			<-release
			store.live = []byte("v2")
			return nil
		})
	}()
	<-entered

	undone := make(chan domain.Outcome, 1)
	go func() {
		outcome, err := svc.Undo(ctx)
		if err != nil {
			t.Errorf("undo: %v", err)
		}
		undone <- outcome
	}()
	select {
	case <-undone:
		t.Fatalf("undo ran while a mutation held the gateway")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-mutated; err != nil {
		t.Fatalf("within: %v", err)
	}
	outcome := <-undone
	if !outcome.Applied || string(store.live) != "v1" {
		t.Fatalf("undo must see the finished mutation: %+v live=%s", outcome, store.live)
	}
}
