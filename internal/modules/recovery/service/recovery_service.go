package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"studylog/internal/modules/recovery/domain"
	recoveryout "studylog/internal/modules/recovery/port/out"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/logging"
	"studylog/internal/platform/tx"
)

const (
	msgNothingToUndo = "nothing to undo"
	msgNothingToRedo = "nothing to redo"
)

// RecoveryService runs undo, redo, restore and rebuild. Every operation that
// touches the record store holds mu from its first snapshot lookup to its
// last file move.
type RecoveryService struct {
	mu      *sync.Mutex
	store   recoveryout.SnapshotStore
	tx      tx.Manager
	clock   clock.Clock
	rebuild recoveryout.Rebuilder
	logger  hclog.Logger
}

type Option func(*RecoveryService)

// SharedWith serializes the service with g and routes rebuilds through g's
// snapshots.
func SharedWith(g *Gateway) Option {
	return func(s *RecoveryService) {
		s.mu = g.mu
		s.tx = g
		s.clock = g.clock
	}
}

func WithRebuilder(r recoveryout.Rebuilder) Option {
	return func(s *RecoveryService) { s.rebuild = r }
}

func NewRecoveryService(store recoveryout.SnapshotStore, logger hclog.Logger, opts ...Option) *RecoveryService {
	s := &RecoveryService{
		mu:     &sync.Mutex{},
		store:  store,
		tx:     tx.NoopManager{},
		clock:  clock.SystemClock{},
		logger: logging.OrNull(logger).Named("recovery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Undo restores the newest short-term snapshot after preserving the current
// state in the redo pool, then consumes that snapshot.
func (s *RecoveryService) Undo(ctx context.Context) (domain.Outcome, error) {
	return s.swap(ctx, swapPlan{
		source:         domain.PoolShortTerm,
		preserveInto:   domain.PoolRedo,
		preserveDesc:   domain.DescriptionForRedo,
		restoreDesc:    domain.DescriptionUndo,
		nothingMessage: msgNothingToUndo,
		appliedMessage: "undo applied",
	})
}

// Redo is the mirror of Undo: it restores the newest redo snapshot after
// preserving the current state back into the short-term pool.
func (s *RecoveryService) Redo(ctx context.Context) (domain.Outcome, error) {
	return s.swap(ctx, swapPlan{
		source:         domain.PoolRedo,
		preserveInto:   domain.PoolShortTerm,
		preserveDesc:   domain.DescriptionForUndo,
		restoreDesc:    domain.DescriptionRedo,
		nothingMessage: msgNothingToRedo,
		appliedMessage: "redo applied",
	})
}

type swapPlan struct {
	source         domain.Pool
	preserveInto   domain.Pool
	preserveDesc   string
	restoreDesc    string
	nothingMessage string
	appliedMessage string
}

func (s *RecoveryService) swap(ctx context.Context, plan swapPlan) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok, err := s.store.Latest(ctx, plan.source)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !ok {
		s.logger.Warn(plan.nothingMessage, "pool", plan.source)
		return domain.Outcome{Applied: false, Message: plan.nothingMessage}, nil
	}
	preserved, err := s.store.Snapshot(ctx, plan.preserveInto, plan.preserveDesc)
	if err != nil {
		return domain.Outcome{}, err
	}
	if err := s.store.Restore(ctx, target, plan.restoreDesc); err != nil {
		return domain.Outcome{}, err
	}
	if err := s.store.Remove(ctx, target); err != nil {
		return domain.Outcome{}, fmt.Errorf("consume %s: %w", target.Name, err)
	}
	s.logger.Info(plan.appliedMessage, "restored", target.Name, "preserved", preserved.Name)
	return domain.Outcome{
		Applied:   true,
		Message:   plan.appliedMessage,
		Restored:  target,
		Preserved: preserved,
	}, nil
}

func (s *RecoveryService) SnapshotNow(ctx context.Context, pool domain.Pool, description string) (domain.SnapshotRef, error) {
	if description == "" {
		description = domain.DescriptionManual
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot(ctx, pool, description)
}

// RestoreFrom replaces the record store with an arbitrary snapshot file. The
// current state goes to the short-term pool first so the restore itself can
// be undone.
func (s *RecoveryService) RestoreFrom(ctx context.Context, path string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, err := s.store.Resolve(ctx, path)
	if err != nil {
		return domain.Outcome{}, err
	}
	preserved, err := s.store.Snapshot(ctx, domain.PoolShortTerm, domain.DescriptionPreRestore)
	if err != nil {
		return domain.Outcome{}, err
	}
	if err := s.store.Restore(ctx, target, domain.DescriptionRestore); err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{
		Applied:   true,
		Message:   "restored from " + target.Name,
		Restored:  target,
		Preserved: preserved,
	}, nil
}

func (s *RecoveryService) List(ctx context.Context, pool domain.Pool) ([]domain.SnapshotRef, error) {
	return s.store.List(ctx, pool)
}

// Rebuild replaces the record store contents with r, dated today. It runs
// inside the snapshot gateway, so the previous contents stay one undo away.
// The gateway holds the lock; Rebuild must not take it again.
func (s *RecoveryService) Rebuild(ctx context.Context, r domain.Reconstruction) (domain.Reconstruction, error) {
	if s.rebuild == nil {
		return domain.Reconstruction{}, errors.New("rebuild: no rebuilder configured")
	}
	plan, err := r.OnDate(clock.Date(s.clock.Now()))
	if err != nil {
		return domain.Reconstruction{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	err = s.tx.Within(ctx, domain.DescriptionRebuild, func(ctx context.Context) error {
		return s.rebuild.Rebuild(ctx, plan)
	})
	if err != nil {
		return domain.Reconstruction{}, err
	}
	s.logger.Warn("record store rebuilt", "date", plan.Date, "sessions", len(plan.Sessions), "entries", plan.EventCount())
	return plan, nil
}
