package usecase

import (
	"context"
	"fmt"

	"studylog/internal/modules/recovery/domain"
	recoverydto "studylog/internal/modules/recovery/dto"
	recoveryin "studylog/internal/modules/recovery/port/in"
	"studylog/internal/modules/recovery/service"
	apperrors "studylog/internal/platform/errors"
)

type Interactor struct {
	svc *service.RecoveryService
}

func NewInteractor(svc *service.RecoveryService) recoveryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Undo(ctx context.Context) (recoverydto.RecoveryOutput, error) {
	outcome, err := i.svc.Undo(ctx)
	if err != nil {
		return recoverydto.RecoveryOutput{}, err
	}
	return toRecoveryOutput(outcome), nil
}

func (i *Interactor) Redo(ctx context.Context) (recoverydto.RecoveryOutput, error) {
	outcome, err := i.svc.Redo(ctx)
	if err != nil {
		return recoverydto.RecoveryOutput{}, err
	}
	return toRecoveryOutput(outcome), nil
}

func (i *Interactor) SnapshotNow(ctx context.Context, input recoverydto.SnapshotInput) (recoverydto.SnapshotOutput, error) {
	pool, err := domain.ParsePool(input.Pool)
	if err != nil {
		return recoverydto.SnapshotOutput{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	ref, err := i.svc.SnapshotNow(ctx, pool, input.Description)
	if err != nil {
		return recoverydto.SnapshotOutput{}, err
	}
	return toSnapshotOutput(ref), nil
}

func (i *Interactor) Restore(ctx context.Context, input recoverydto.RestoreInput) (recoverydto.RecoveryOutput, error) {
	if input.Path == "" {
		return recoverydto.RecoveryOutput{}, fmt.Errorf("snapshot path is required: %w", apperrors.ErrInvalidInput)
	}
	outcome, err := i.svc.RestoreFrom(ctx, input.Path)
	if err != nil {
		return recoverydto.RecoveryOutput{}, err
	}
	return toRecoveryOutput(outcome), nil
}

func (i *Interactor) ListSnapshots(ctx context.Context, pool string) ([]recoverydto.SnapshotOutput, error) {
	parsed, err := domain.ParsePool(pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	refs, err := i.svc.List(ctx, parsed)
	if err != nil {
		return nil, err
	}
	out := make([]recoverydto.SnapshotOutput, 0, len(refs))
	for _, ref := range refs {
		out = append(out, toSnapshotOutput(ref))
	}
	return out, nil
}

func (i *Interactor) Rebuild(ctx context.Context, input recoverydto.RebuildInput) (recoverydto.RebuildOutput, error) {
	r := domain.Reconstruction{DailySummary: input.DailySummary, Sessions: make([]domain.RebuiltSession, 0, len(input.Sessions))}
	for _, session := range input.Sessions {
		rebuilt := domain.RebuiltSession{Subject: session.Subject, Summary: session.Summary}
		for _, event := range session.Details {
			rebuilt.Events = append(rebuilt.Events, domain.RebuiltEvent{
				EventType:       event.EventType,
				Content:         event.Content,
				StartTime:       event.StartTime,
				EndTime:         event.EndTime,
				DurationMinutes: event.DurationMinutes,
			})
		}
		r.Sessions = append(r.Sessions, rebuilt)
	}
	plan, err := i.svc.Rebuild(ctx, r)
	if err != nil {
		return recoverydto.RebuildOutput{}, err
	}
	return recoverydto.RebuildOutput{Date: plan.Date, Sessions: len(plan.Sessions), Entries: plan.EventCount()}, nil
}

func toRecoveryOutput(outcome domain.Outcome) recoverydto.RecoveryOutput {
	out := recoverydto.RecoveryOutput{Applied: outcome.Applied, Message: outcome.Message}
	if outcome.Applied {
		restored := toSnapshotOutput(outcome.Restored)
		preserved := toSnapshotOutput(outcome.Preserved)
		out.Restored = &restored
		out.Preserved = &preserved
	}
	return out
}

func toSnapshotOutput(ref domain.SnapshotRef) recoverydto.SnapshotOutput {
	return recoverydto.SnapshotOutput{
		Pool:    string(ref.Pool),
		Name:    ref.Name,
		Path:    ref.Path,
		TakenAt: ref.TakenAt,
		Size:    ref.Size,
	}
}
