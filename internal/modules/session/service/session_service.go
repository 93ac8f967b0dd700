package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"studylog/internal/modules/session/domain"
	sessionout "studylog/internal/modules/session/port/out"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/logging"
	"studylog/internal/platform/tx"
)

const (
	descStart          = "Before start session."
	descEnd            = "Before ending session."
	descBreak          = "Before break session."
	descResume         = "Before resume session."
	descMerge          = "Before merging sessions."
	descConsolidate    = "Before consolidating last BREAK into RESUME."
	descUpdateEntry    = "Before updating log entry."
	descUpdateEndTime  = "Before updating end time."
	descDeleteEntry    = "Before deleting log entry."
	descSessionSummary = "Before session summary update."
	descRecalculate    = "Before recalculating all durations."
)

// Transition is the result of one state-machine step.
type Transition struct {
	State  domain.State
	Closed *domain.Entry
	Opened *domain.Entry
}

type StartParams struct {
	Subject    string
	Content    string
	Memo       *string
	Impression *string
}

// SessionService drives the study state machine. Preconditions are checked
// before the mutation boundary, so a rejected operation leaves no snapshot
// behind.
type SessionService struct {
	clock  clock.Clock
	store  sessionout.LogStore
	tx     tx.Manager
	logger hclog.Logger
}

func NewSessionService(clk clock.Clock, store sessionout.LogStore, txm tx.Manager, logger hclog.Logger) *SessionService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &SessionService{clock: clk, store: store, tx: txm, logger: logging.OrNull(logger).Named("session")}
}

func (s *SessionService) now() domain.Entry {
	return domain.Entry{StartTime: s.clock.Now().Truncate(time.Second)}
}

func (s *SessionService) State(ctx context.Context) (domain.State, *domain.Entry, error) {
	open, ok, err := s.store.LatestOpen(ctx)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return domain.StateNoActiveEntry, nil, nil
	}
	return domain.StateOf(&open), &open, nil
}

func (s *SessionService) check(ctx context.Context, op domain.Operation) (domain.State, *domain.Entry, error) {
	state, open, err := s.State(ctx)
	if err != nil {
		return "", nil, err
	}
	next, err := domain.Next(state, op)
	if err != nil {
		s.logger.Warn("transition rejected", "operation", op, "state", state, "error", err)
		return state, open, err
	}
	return next, open, nil
}

func (s *SessionService) Start(ctx context.Context, params StartParams) (Transition, error) {
	if strings.TrimSpace(params.Subject) == "" || strings.TrimSpace(params.Content) == "" {
		return Transition{}, fmt.Errorf("subject and content are required: %w", apperrors.ErrInvalidInput)
	}
	next, _, err := s.check(ctx, domain.OpStart)
	if err != nil {
		return Transition{}, err
	}
	var out Transition
	err = s.tx.Within(ctx, descStart, func(ctx context.Context) error {
		entry := s.now()
		entry.EventType = domain.EventStart
		entry.Subject = domain.StringPtr(params.Subject)
		entry.Content = domain.StringPtr(params.Content)
		entry.Memo = params.Memo
		entry.Impression = params.Impression
		ids, err := s.store.Apply(ctx, domain.Changes{Inserts: []domain.Entry{entry}})
		if err != nil {
			return err
		}
		entry.ID = ids[0]
		out = Transition{State: next, Opened: &entry}
		return nil
	})
	if err != nil {
		return Transition{}, err
	}
	s.logger.Info("session started", "id", out.Opened.ID, "subject", params.Subject)
	return out, nil
}

func (s *SessionService) Break(ctx context.Context, content *string) (Transition, error) {
	next, open, err := s.check(ctx, domain.OpBreak)
	if err != nil {
		return Transition{}, err
	}
	var out Transition
	err = s.tx.Within(ctx, descBreak, func(ctx context.Context) error {
		brk := s.now()
		closed := *open
		closed.Close(brk.StartTime)
		brk.EventType = domain.EventBreak
		brk.Content = content
		ids, err := s.store.Apply(ctx, domain.Changes{Updates: []domain.Entry{closed}, Inserts: []domain.Entry{brk}})
		if err != nil {
			return err
		}
		brk.ID = ids[0]
		out = Transition{State: next, Closed: &closed, Opened: &brk}
		return nil
	})
	if err != nil {
		return Transition{}, err
	}
	s.logger.Info("session on break", "closed", out.Closed.ID, "break", out.Opened.ID)
	return out, nil
}

// Resume closes the running BREAK and opens a RESUME that carries the
// subject and content of the most recent START.
func (s *SessionService) Resume(ctx context.Context, memo, impression *string) (Transition, error) {
	next, open, err := s.check(ctx, domain.OpResume)
	if err != nil {
		return Transition{}, err
	}
	start, found, err := s.store.LatestStart(ctx)
	if err != nil {
		return Transition{}, err
	}
	var out Transition
	err = s.tx.Within(ctx, descResume, func(ctx context.Context) error {
		resume := s.now()
		closed := *open
		closed.Close(resume.StartTime)
		resume.EventType = domain.EventResume
		if found {
			resume.Subject = start.Subject
			resume.Content = start.Content
		}
		resume.Memo = memo
		resume.Impression = impression
		ids, err := s.store.Apply(ctx, domain.Changes{Updates: []domain.Entry{closed}, Inserts: []domain.Entry{resume}})
		if err != nil {
			return err
		}
		resume.ID = ids[0]
		out = Transition{State: next, Closed: &closed, Opened: &resume}
		return nil
	})
	if err != nil {
		return Transition{}, err
	}
	s.logger.Info("session resumed", "id", out.Opened.ID)
	return out, nil
}

func (s *SessionService) End(ctx context.Context) (Transition, error) {
	next, open, err := s.check(ctx, domain.OpEnd)
	if err != nil {
		return Transition{}, err
	}
	closed := *open
	err = s.tx.Within(ctx, descEnd, func(ctx context.Context) error {
		closed.Close(s.now().StartTime)
		_, err := s.store.Apply(ctx, domain.Changes{Updates: []domain.Entry{closed}})
		return err
	})
	if err != nil {
		return Transition{}, err
	}
	s.logger.Info("session ended", "id", closed.ID, "minutes", *closed.DurationMinutes)
	return Transition{State: next, Closed: &closed}, nil
}

type MergeResult struct {
	Break   domain.Entry
	Resumed domain.Entry
}

// Merge joins session second into session first. Both ids name START
// entries; their summaries have to match exactly.
func (s *SessionService) Merge(ctx context.Context, first, second int64) (MergeResult, error) {
	firstStart, err := s.store.FindByID(ctx, first)
	if err != nil {
		return MergeResult{}, err
	}
	secondStart, err := s.store.FindByID(ctx, second)
	if err != nil {
		return MergeResult{}, err
	}
	var lastOfFirst *domain.Entry
	if first < second {
		last, ok, err := s.store.LastBetween(ctx, first, second)
		if err != nil {
			return MergeResult{}, err
		}
		if ok {
			lastOfFirst = &last
		}
	}
	changes, err := domain.PlanMerge(firstStart, secondStart, lastOfFirst)
	if err != nil {
		s.logger.Warn("merge rejected", "session1", first, "session2", second, "error", err)
		return MergeResult{}, err
	}
	result := MergeResult{Break: changes.Inserts[0], Resumed: changes.Updates[0]}
	err = s.tx.Within(ctx, descMerge, func(ctx context.Context) error {
		ids, err := s.store.Apply(ctx, changes)
		if err != nil {
			return err
		}
		result.Break.ID = ids[0]
		return nil
	})
	if err != nil {
		return MergeResult{}, err
	}
	s.logger.Info("sessions merged", "session1", first, "session2", second)
	return result, nil
}

// ConsolidateBreak folds the trailing BREAK into the RESUME before it and
// returns the rewritten RESUME.
func (s *SessionService) ConsolidateBreak(ctx context.Context) (domain.Entry, error) {
	newest, err := s.store.Latest(ctx, 2)
	if err != nil {
		return domain.Entry{}, err
	}
	changes, err := domain.PlanConsolidation(newest)
	if err != nil {
		s.logger.Error("consolidation rejected", "error", err)
		return domain.Entry{}, err
	}
	err = s.tx.Within(ctx, descConsolidate, func(ctx context.Context) error {
		_, err := s.store.Apply(ctx, changes)
		return err
	})
	if err != nil {
		return domain.Entry{}, err
	}
	s.logger.Info("break consolidated", "resume", changes.Updates[0].ID, "removed", changes.Deletes[0])
	return changes.Updates[0], nil
}

// UpdateSessionSummary sets the summary on sessionID, or on the most recent
// START when sessionID is nil.
func (s *SessionService) UpdateSessionSummary(ctx context.Context, summary *string, sessionID *int64) (domain.Entry, error) {
	var target domain.Entry
	if sessionID == nil {
		start, ok, err := s.store.LatestStart(ctx)
		if err != nil {
			return domain.Entry{}, err
		}
		if !ok {
			return domain.Entry{}, fmt.Errorf("no session to summarize: %w", apperrors.ErrNotFound)
		}
		target = start
	} else {
		entry, err := s.store.FindByID(ctx, *sessionID)
		if err != nil {
			return domain.Entry{}, err
		}
		target = entry
	}
	target.Summary = summary
	if err := s.apply(ctx, descSessionSummary, domain.Changes{Updates: []domain.Entry{target}}); err != nil {
		return domain.Entry{}, err
	}
	return target, nil
}

func (s *SessionService) apply(ctx context.Context, description string, changes domain.Changes) error {
	return s.tx.Within(ctx, description, func(ctx context.Context) error {
		_, err := s.store.Apply(ctx, changes)
		return err
	})
}
