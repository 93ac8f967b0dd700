package in

import (
	"context"

	recoverydto "studylog/internal/modules/recovery/dto"
	recoveryin "studylog/internal/modules/recovery/port/in"
)

type CLIHandler struct {
	usecase recoveryin.Usecase
}

func NewCLIHandler(usecase recoveryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Undo(ctx context.Context) (recoverydto.RecoveryOutput, error) {
	return h.usecase.Undo(ctx)
}

func (h CLIHandler) Redo(ctx context.Context) (recoverydto.RecoveryOutput, error) {
	return h.usecase.Redo(ctx)
}

func (h CLIHandler) Backup(ctx context.Context, pool, description string) (recoverydto.SnapshotOutput, error) {
	return h.usecase.SnapshotNow(ctx, recoverydto.SnapshotInput{Pool: pool, Description: description})
}

func (h CLIHandler) Restore(ctx context.Context, path string) (recoverydto.RecoveryOutput, error) {
	return h.usecase.Restore(ctx, recoverydto.RestoreInput{Path: path})
}

func (h CLIHandler) Snapshots(ctx context.Context, pool string) ([]recoverydto.SnapshotOutput, error) {
	return h.usecase.ListSnapshots(ctx, pool)
}

func (h CLIHandler) Rebuild(ctx context.Context, input recoverydto.RebuildInput) (recoverydto.RebuildOutput, error) {
	return h.usecase.Rebuild(ctx, input)
}
