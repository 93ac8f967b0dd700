package in

import (
	"context"

	sessiondto "studylog/internal/modules/session/dto"
	sessionin "studylog/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, subject, content string, memo, impression *string) (sessiondto.TransitionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Subject: subject, Content: content, Memo: memo, Impression: impression})
}

func (h CLIHandler) Break(ctx context.Context, content *string) (sessiondto.TransitionOutput, error) {
	return h.usecase.Break(ctx, sessiondto.BreakInput{Content: content})
}

func (h CLIHandler) Resume(ctx context.Context, memo, impression *string) (sessiondto.TransitionOutput, error) {
	return h.usecase.Resume(ctx, sessiondto.ResumeInput{Memo: memo, Impression: impression})
}

func (h CLIHandler) End(ctx context.Context) (sessiondto.TransitionOutput, error) {
	return h.usecase.End(ctx)
}

func (h CLIHandler) Active(ctx context.Context) (sessiondto.ActiveOutput, error) {
	return h.usecase.Active(ctx)
}

func (h CLIHandler) Merge(ctx context.Context, session1, session2 int64) (sessiondto.MergeOutput, error) {
	return h.usecase.Merge(ctx, sessiondto.MergeInput{Session1ID: session1, Session2ID: session2})
}

func (h CLIHandler) ConsolidateBreak(ctx context.Context) (sessiondto.EntryOutput, error) {
	return h.usecase.ConsolidateBreak(ctx)
}

func (h CLIHandler) Day(ctx context.Context, date string) (sessiondto.DayOutput, error) {
	return h.usecase.Day(ctx, date)
}
