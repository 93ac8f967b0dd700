package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studylog/internal/modules/recovery/domain"
	apperrors "studylog/internal/platform/errors"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

// memoryStore keeps snapshots as byte slices and the live record store as a
// single []byte so tests can check swaps exactly.
type memoryStore struct {
	clock    *stepClock
	live     []byte
	pools    map[domain.Pool][]memorySnapshot
	calls    []string
	failPool domain.Pool
}

type memorySnapshot struct {
	ref  domain.SnapshotRef
	data []byte
}

func newMemoryStore(live string) *memoryStore {
	return &memoryStore{
		clock: &stepClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		live:  []byte(live),
		pools: map[domain.Pool][]memorySnapshot{},
	}
}

func (m *memoryStore) Snapshot(_ context.Context, pool domain.Pool, description string) (domain.SnapshotRef, error) {
	m.calls = append(m.calls, fmt.Sprintf("snapshot %s %s", pool, description))
	if pool == m.failPool {
		return domain.SnapshotRef{}, fmt.Errorf("%w: disk full", apperrors.ErrStorage)
	}
	now := m.clock.Now()
	ref := domain.SnapshotRef{Pool: pool, Name: domain.SnapshotName(now), Path: string(pool) + "/" + domain.SnapshotName(now), TakenAt: now, ModTime: now}
	m.pools[pool] = append(m.pools[pool], memorySnapshot{ref: ref, data: append([]byte(nil), m.live...)})
	return ref, nil
}

func (m *memoryStore) Latest(_ context.Context, pool domain.Pool) (domain.SnapshotRef, bool, error) {
	items := m.pools[pool]
	if len(items) == 0 {
		return domain.SnapshotRef{}, false, nil
	}
	return items[len(items)-1].ref, true, nil
}

func (m *memoryStore) List(_ context.Context, pool domain.Pool) ([]domain.SnapshotRef, error) {
	out := []domain.SnapshotRef{}
	for _, item := range m.pools[pool] {
		out = append(out, item.ref)
	}
	return out, nil
}

func (m *memoryStore) Restore(_ context.Context, ref domain.SnapshotRef, description string) error {
	m.calls = append(m.calls, fmt.Sprintf("restore %s %s", ref.Pool, description))
	for _, items := range m.pools {
		for _, item := range items {
			if item.ref.Path == ref.Path {
				m.live = append([]byte(nil), item.data...)
				return nil
			}
		}
	}
	return fmt.Errorf("snapshot %s: %w", ref.Path, apperrors.ErrNotFound)
}

func (m *memoryStore) Remove(_ context.Context, ref domain.SnapshotRef) error {
	m.calls = append(m.calls, fmt.Sprintf("remove %s", ref.Pool))
	items := m.pools[ref.Pool]
	for i, item := range items {
		if item.ref.Path == ref.Path {
			m.pools[ref.Pool] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return errors.New("missing snapshot")
}

func (m *memoryStore) Resolve(_ context.Context, path string) (domain.SnapshotRef, error) {
	for _, items := range m.pools {
		for _, item := range items {
			if item.ref.Path == path {
				return item.ref, nil
			}
		}
	}
	return domain.SnapshotRef{}, fmt.Errorf("snapshot %s: %w", path, apperrors.ErrNotFound)
}

type fakeActivity struct {
	days map[string]bool
	err  error
}

func (f *fakeActivity) HasEntriesOn(_ context.Context, day string) (bool, error) {
	return f.days[day], f.err
}
