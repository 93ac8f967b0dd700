package in

import (
	"context"

	sessiondto "studylog/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.TransitionOutput, error)
	Break(ctx context.Context, input sessiondto.BreakInput) (sessiondto.TransitionOutput, error)
	Resume(ctx context.Context, input sessiondto.ResumeInput) (sessiondto.TransitionOutput, error)
	End(ctx context.Context) (sessiondto.TransitionOutput, error)
	Merge(ctx context.Context, input sessiondto.MergeInput) (sessiondto.MergeOutput, error)
	ConsolidateBreak(ctx context.Context) (sessiondto.EntryOutput, error)
	Active(ctx context.Context) (sessiondto.ActiveOutput, error)
	UpdateSessionSummary(ctx context.Context, input sessiondto.SessionSummaryInput) (sessiondto.EntryOutput, error)

	GetEntry(ctx context.Context, id int64) (sessiondto.EntryOutput, error)
	UpdateEntry(ctx context.Context, input sessiondto.UpdateEntryInput) (sessiondto.EntryOutput, error)
	UpdateEndTime(ctx context.Context, input sessiondto.UpdateEndTimeInput) (sessiondto.EntryOutput, error)
	DeleteEntry(ctx context.Context, id int64) error
	Day(ctx context.Context, date string) (sessiondto.DayOutput, error)
	RecalculateDurations(ctx context.Context) (sessiondto.RecalculateOutput, error)
}
