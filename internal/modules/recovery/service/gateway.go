package service

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"studylog/internal/modules/recovery/domain"
	recoveryout "studylog/internal/modules/recovery/port/out"
	"studylog/internal/platform/clock"
	"studylog/internal/platform/logging"
	"studylog/internal/platform/tx"
)

// Gateway is the snapshot-before-mutate boundary. Every state-changing
// operation runs inside Within; the mutation only runs once its snapshots
// are safely on disk. Within holds mu for the whole operation; a
// RecoveryService built with SharedWith takes the same lock, so an undo never
// interleaves with a guarded mutation or another undo.
type Gateway struct {
	mu       *sync.Mutex
	store    recoveryout.SnapshotStore
	activity recoveryout.DayActivity
	clock    clock.Clock
	logger   hclog.Logger
}

var _ tx.Manager = (*Gateway)(nil)

func NewGateway(store recoveryout.SnapshotStore, activity recoveryout.DayActivity, clk clock.Clock, logger hclog.Logger) *Gateway {
	return &Gateway{mu: &sync.Mutex{}, store: store, activity: activity, clock: clk, logger: logging.OrNull(logger).Named("gateway")}
}

func (g *Gateway) Within(ctx context.Context, description string, fn func(context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.dailySnapshot(ctx); err != nil {
		return err
	}
	if _, err := g.store.Snapshot(ctx, domain.PoolShortTerm, description); err != nil {
		g.logger.Error("mutation aborted", "operation", description, "error", err)
		return err
	}
	return fn(ctx)
}

// dailySnapshot takes the long-term snapshot before the first mutation of a
// calendar day: no log entry exists for today and no long-term snapshot was
// taken today yet.
func (g *Gateway) dailySnapshot(ctx context.Context) error {
	today := clock.Date(g.clock.Now())
	if g.activity != nil {
		seen, err := g.activity.HasEntriesOn(ctx, today)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	latest, ok, err := g.store.Latest(ctx, domain.PoolLongTerm)
	if err != nil {
		return err
	}
	if ok && clock.Date(latest.TakenAt) == today {
		return nil
	}
	if _, err := g.store.Snapshot(ctx, domain.PoolLongTerm, domain.DescriptionDaily); err != nil {
		g.logger.Error("daily snapshot failed", "error", err)
		return err
	}
	return nil
}
