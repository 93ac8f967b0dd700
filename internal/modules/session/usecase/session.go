package usecase

import (
	"context"
	"fmt"

	"studylog/internal/modules/session/domain"
	sessiondto "studylog/internal/modules/session/dto"
	sessionin "studylog/internal/modules/session/port/in"
	"studylog/internal/modules/session/service"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.TransitionOutput, error) {
	out, err := i.svc.Start(ctx, service.StartParams{
		Subject:    input.Subject,
		Content:    input.Content,
		Memo:       input.Memo,
		Impression: input.Impression,
	})
	if err != nil {
		return sessiondto.TransitionOutput{}, err
	}
	return toTransitionOutput(out), nil
}

func (i *Interactor) Break(ctx context.Context, input sessiondto.BreakInput) (sessiondto.TransitionOutput, error) {
	out, err := i.svc.Break(ctx, input.Content)
	if err != nil {
		return sessiondto.TransitionOutput{}, err
	}
	return toTransitionOutput(out), nil
}

func (i *Interactor) Resume(ctx context.Context, input sessiondto.ResumeInput) (sessiondto.TransitionOutput, error) {
	out, err := i.svc.Resume(ctx, input.Memo, input.Impression)
	if err != nil {
		return sessiondto.TransitionOutput{}, err
	}
	return toTransitionOutput(out), nil
}

func (i *Interactor) End(ctx context.Context) (sessiondto.TransitionOutput, error) {
	out, err := i.svc.End(ctx)
	if err != nil {
		return sessiondto.TransitionOutput{}, err
	}
	return toTransitionOutput(out), nil
}

func (i *Interactor) Merge(ctx context.Context, input sessiondto.MergeInput) (sessiondto.MergeOutput, error) {
	if input.Session1ID <= 0 || input.Session2ID <= 0 {
		return sessiondto.MergeOutput{}, fmt.Errorf("session1_id and session2_id are required: %w", apperrors.ErrInvalidInput)
	}
	result, err := i.svc.Merge(ctx, input.Session1ID, input.Session2ID)
	if err != nil {
		return sessiondto.MergeOutput{}, err
	}
	return sessiondto.MergeOutput{
		SessionID: input.Session1ID,
		Break:     toEntryOutput(result.Break),
		Resumed:   toEntryOutput(result.Resumed),
	}, nil
}

func (i *Interactor) ConsolidateBreak(ctx context.Context) (sessiondto.EntryOutput, error) {
	entry, err := i.svc.ConsolidateBreak(ctx)
	if err != nil {
		return sessiondto.EntryOutput{}, err
	}
	return toEntryOutput(entry), nil
}

func (i *Interactor) Active(ctx context.Context) (sessiondto.ActiveOutput, error) {
	state, open, err := i.svc.State(ctx)
	if err != nil {
		return sessiondto.ActiveOutput{}, err
	}
	out := sessiondto.ActiveOutput{Active: state == domain.StateActive, State: string(state)}
	if open != nil {
		entry := toEntryOutput(*open)
		out.EventType = entry.EventType
		out.Entry = &entry
	}
	return out, nil
}

func (i *Interactor) UpdateSessionSummary(ctx context.Context, input sessiondto.SessionSummaryInput) (sessiondto.EntryOutput, error) {
	entry, err := i.svc.UpdateSessionSummary(ctx, input.Summary, input.SessionID)
	if err != nil {
		return sessiondto.EntryOutput{}, err
	}
	return toEntryOutput(entry), nil
}

func (i *Interactor) GetEntry(ctx context.Context, id int64) (sessiondto.EntryOutput, error) {
	entry, err := i.svc.GetEntry(ctx, id)
	if err != nil {
		return sessiondto.EntryOutput{}, err
	}
	return toEntryOutput(entry), nil
}

func (i *Interactor) UpdateEntry(ctx context.Context, input sessiondto.UpdateEntryInput) (sessiondto.EntryOutput, error) {
	entry, err := i.svc.UpdateEntry(ctx, input.ID, input.Field, input.Value)
	if err != nil {
		return sessiondto.EntryOutput{}, err
	}
	return toEntryOutput(entry), nil
}

func (i *Interactor) UpdateEndTime(ctx context.Context, input sessiondto.UpdateEndTimeInput) (sessiondto.EntryOutput, error) {
	entry, err := i.svc.UpdateEndTime(ctx, input.ID, input.EndTime)
	if err != nil {
		return sessiondto.EntryOutput{}, err
	}
	return toEntryOutput(entry), nil
}

func (i *Interactor) DeleteEntry(ctx context.Context, id int64) error {
	return i.svc.DeleteEntry(ctx, id)
}

func (i *Interactor) Day(ctx context.Context, date string) (sessiondto.DayOutput, error) {
	view, err := i.svc.Day(ctx, date)
	if err != nil {
		return sessiondto.DayOutput{}, err
	}
	out := sessiondto.DayOutput{
		Date:                 view.Date,
		TotalDayStudyMinutes: view.TotalMinutes,
		SubjectsStudied:      view.Subjects,
		Sessions:             make([]sessiondto.SessionOutput, 0, len(view.Sessions)),
		AllEntries:           toEntryOutputs(view.Entries),
	}
	for _, session := range view.Sessions {
		item := sessiondto.SessionOutput{
			SessionID:         session.SessionID,
			Subject:           session.Subject,
			Summary:           session.Summary,
			TotalStudyMinutes: session.StudyMinutes,
			Details:           toEntryOutputs(session.Entries),
		}
		if len(session.Entries) > 0 {
			first, last := session.Entries[0], session.Entries[len(session.Entries)-1]
			item.SessionStartTime = first.StartTime.Format("15:04")
			item.SessionEndTime = last.StartTime.Format("15:04")
			if last.EndTime != nil {
				item.SessionEndTime = last.EndTime.Format("15:04")
			}
		}
		out.Sessions = append(out.Sessions, item)
	}
	return out, nil
}

func (i *Interactor) RecalculateDurations(ctx context.Context) (sessiondto.RecalculateOutput, error) {
	updated, err := i.svc.RecalculateDurations(ctx)
	if err != nil {
		return sessiondto.RecalculateOutput{}, err
	}
	return sessiondto.RecalculateOutput{Updated: updated}, nil
}

func toTransitionOutput(t service.Transition) sessiondto.TransitionOutput {
	out := sessiondto.TransitionOutput{State: string(t.State)}
	if t.Closed != nil {
		closed := toEntryOutput(*t.Closed)
		out.Closed = &closed
	}
	if t.Opened != nil {
		opened := toEntryOutput(*t.Opened)
		out.Opened = &opened
	}
	return out
}

func toEntryOutputs(entries []domain.Entry) []sessiondto.EntryOutput {
	out := make([]sessiondto.EntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryOutput(entry))
	}
	return out
}

func toEntryOutput(entry domain.Entry) sessiondto.EntryOutput {
	out := sessiondto.EntryOutput{
		ID:              entry.ID,
		EventType:       string(entry.EventType),
		Subject:         entry.Subject,
		Content:         entry.Content,
		StartTime:       clock.Format(entry.StartTime),
		DurationMinutes: entry.DurationMinutes,
		Summary:         entry.Summary,
		Memo:            entry.Memo,
		Impression:      entry.Impression,
	}
	if entry.EndTime != nil {
		end := clock.Format(*entry.EndTime)
		out.EndTime = &end
	}
	return out
}
