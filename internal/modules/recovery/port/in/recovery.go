package in

import (
	"context"

	"studylog/internal/modules/recovery/dto"
)

type Usecase interface {
	Undo(ctx context.Context) (dto.RecoveryOutput, error)
	Redo(ctx context.Context) (dto.RecoveryOutput, error)
	SnapshotNow(ctx context.Context, input dto.SnapshotInput) (dto.SnapshotOutput, error)
	Restore(ctx context.Context, input dto.RestoreInput) (dto.RecoveryOutput, error)
	ListSnapshots(ctx context.Context, pool string) ([]dto.SnapshotOutput, error)
	Rebuild(ctx context.Context, input dto.RebuildInput) (dto.RebuildOutput, error)
}
