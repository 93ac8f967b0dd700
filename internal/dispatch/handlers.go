package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	plannerdto "studylog/internal/modules/planner/dto"
	recoverydto "studylog/internal/modules/recovery/dto"
	sessiondto "studylog/internal/modules/session/dto"
	apperrors "studylog/internal/platform/errors"
)

func (d *Dispatcher) sessionStart(ctx context.Context, params json.RawMessage) (Result, error) {
	var p startParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.Start(ctx, sessiondto.StartInput{Subject: p.Subject, Content: p.Content, Memo: p.Memo, Impression: p.Impression})
	if err != nil {
		return Result{}, err
	}
	return successMessage("session started", out), nil
}

func (d *Dispatcher) sessionBreak(ctx context.Context, params json.RawMessage) (Result, error) {
	var p breakParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	content := p.Content
	if content == nil {
		content = p.BreakContent
	}
	out, err := d.session.Break(ctx, sessiondto.BreakInput{Content: content})
	if err != nil {
		return Result{}, err
	}
	return successMessage("session on break", out), nil
}

func (d *Dispatcher) sessionResume(ctx context.Context, params json.RawMessage) (Result, error) {
	var p resumeParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.Resume(ctx, sessiondto.ResumeInput{Memo: p.Memo, Impression: p.Impression})
	if err != nil {
		return Result{}, err
	}
	return successMessage("session resumed", out), nil
}

func (d *Dispatcher) sessionEnd(ctx context.Context, _ json.RawMessage) (Result, error) {
	out, err := d.session.End(ctx)
	if err != nil {
		return Result{}, err
	}
	return successMessage("session ended", out), nil
}

func (d *Dispatcher) sessionMerge(ctx context.Context, params json.RawMessage) (Result, error) {
	var p mergeParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.Merge(ctx, sessiondto.MergeInput{Session1ID: p.Session1ID, Session2ID: p.Session2ID})
	if err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("merged session %d into %d", p.Session2ID, p.Session1ID), out), nil
}

func (d *Dispatcher) sessionConsolidate(ctx context.Context, _ json.RawMessage) (Result, error) {
	out, err := d.session.ConsolidateBreak(ctx)
	if err != nil {
		return Result{}, err
	}
	return successMessage("last BREAK folded into RESUME", map[string]any{"entry": out}), nil
}

func (d *Dispatcher) sessionActive(ctx context.Context, _ json.RawMessage) (Result, error) {
	out, err := d.session.Active(ctx)
	if err != nil {
		return Result{}, err
	}
	return success(out), nil
}

func (d *Dispatcher) sessionSummaryUpdate(ctx context.Context, params json.RawMessage) (Result, error) {
	var p sessionSummaryParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.UpdateSessionSummary(ctx, sessiondto.SessionSummaryInput{Summary: p.Text, SessionID: p.SessionID})
	if err != nil {
		return Result{}, err
	}
	return successMessage("session summary updated", map[string]any{"entry": out}), nil
}

func (d *Dispatcher) logGetEntry(ctx context.Context, params json.RawMessage) (Result, error) {
	var p idParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.GetEntry(ctx, p.ID)
	if err != nil {
		return Result{}, err
	}
	return success(map[string]any{"entry": out}), nil
}

func (d *Dispatcher) logUpdateEntry(ctx context.Context, params json.RawMessage) (Result, error) {
	var p updateEntryParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	value, err := rawText(p.Value)
	if err != nil {
		return Result{}, err
	}
	out, err := d.session.UpdateEntry(ctx, sessiondto.UpdateEntryInput{ID: p.ID, Field: p.Field, Value: value})
	if err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("log entry %d updated", p.ID), map[string]any{"entry": out}), nil
}

func (d *Dispatcher) logUpdateEndTime(ctx context.Context, params json.RawMessage) (Result, error) {
	var p updateEndTimeParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.UpdateEndTime(ctx, sessiondto.UpdateEndTimeInput{ID: p.ID, EndTime: p.EndTime})
	if err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("end time of log entry %d updated", p.ID), map[string]any{"entry": out}), nil
}

func (d *Dispatcher) logDelete(ctx context.Context, params json.RawMessage) (Result, error) {
	var p idParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	if err := d.session.DeleteEntry(ctx, p.ID); err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("log entry %d deleted", p.ID), nil), nil
}

func (d *Dispatcher) logDay(ctx context.Context, params json.RawMessage) (Result, error) {
	var p requiredDateParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.session.Day(ctx, p.Date)
	if err != nil {
		return Result{}, err
	}
	return success(out), nil
}

func (d *Dispatcher) logRecalculate(ctx context.Context, _ json.RawMessage) (Result, error) {
	out, err := d.session.RecalculateDurations(ctx)
	if err != nil {
		return Result{}, err
	}
	return successMessage("durations recalculated", out), nil
}

func (d *Dispatcher) recoveryResult(out recoverydto.RecoveryOutput) Result {
	if !out.Applied {
		return info(out.Message)
	}
	return successMessage(out.Message, out)
}

func (d *Dispatcher) dbUndo(ctx context.Context, _ json.RawMessage) (Result, error) {
	out, err := d.recovery.Undo(ctx)
	if err != nil {
		return Result{}, err
	}
	return d.recoveryResult(out), nil
}

func (d *Dispatcher) dbRedo(ctx context.Context, _ json.RawMessage) (Result, error) {
	out, err := d.recovery.Redo(ctx)
	if err != nil {
		return Result{}, err
	}
	return d.recoveryResult(out), nil
}

func (d *Dispatcher) dbBackup(ctx context.Context, params json.RawMessage) (Result, error) {
	var p backupParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.recovery.SnapshotNow(ctx, recoverydto.SnapshotInput{Pool: p.Pool, Description: p.Description})
	if err != nil {
		return Result{}, err
	}
	return successMessage("snapshot written", map[string]any{"snapshot": out}), nil
}

func (d *Dispatcher) dbRestore(ctx context.Context, params json.RawMessage) (Result, error) {
	var p restoreParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.recovery.Restore(ctx, recoverydto.RestoreInput{Path: p.BackupPath})
	if err != nil {
		return Result{}, err
	}
	return d.recoveryResult(out), nil
}

func (d *Dispatcher) dbSnapshots(ctx context.Context, params json.RawMessage) (Result, error) {
	var p poolParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.recovery.ListSnapshots(ctx, p.Pool)
	if err != nil {
		return Result{}, err
	}
	return success(map[string]any{"snapshots": out}), nil
}

func (d *Dispatcher) summaryDailyUpdate(ctx context.Context, params json.RawMessage) (Result, error) {
	var p dailySummaryParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.planner.UpdateDailySummary(ctx, plannerdto.DailySummaryInput{Date: p.Date, Summary: p.Text})
	if err != nil {
		return Result{}, err
	}
	return successMessage("daily summary updated", out), nil
}

func (d *Dispatcher) summaryDailyGet(ctx context.Context, params json.RawMessage) (Result, error) {
	var p dateParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.planner.DailySummary(ctx, p.Date)
	if err != nil {
		return Result{}, err
	}
	return success(out), nil
}

func (d *Dispatcher) goalAdd(ctx context.Context, params json.RawMessage) (Result, error) {
	var p addGoalParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	var goal goalFields
	if err := d.bind(p.Goal, &goal); err != nil {
		return Result{}, err
	}
	out, err := d.planner.AddGoal(ctx, plannerdto.AddGoalInput{
		Date:              p.Date,
		Task:              goal.Task,
		Subject:           goal.Subject,
		TotalProblems:     goal.TotalProblems,
		CompletedProblems: goal.CompletedProblems,
		Tags:              goal.Tags,
		Details:           goal.Details,
	})
	if err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("goal %q added to %s", out.Task, out.Date), map[string]any{"goal": out}), nil
}

func (d *Dispatcher) goalGet(ctx context.Context, params json.RawMessage) (Result, error) {
	var p goalIDParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.planner.GetGoal(ctx, p.ID)
	if err != nil {
		return Result{}, err
	}
	return success(map[string]any{"goal": out}), nil
}

func (d *Dispatcher) goalUpdate(ctx context.Context, params json.RawMessage) (Result, error) {
	var p updateGoalParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	value, err := rawText(p.Value)
	if err != nil {
		return Result{}, err
	}
	if value == nil {
		return Result{}, fmt.Errorf("goal value is required: %w", apperrors.ErrInvalidInput)
	}
	out, err := d.planner.UpdateGoal(ctx, plannerdto.UpdateGoalInput{ID: p.ID, Field: p.Field, Value: *value})
	if err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("goal %s updated", p.ID), map[string]any{"goal": out}), nil
}

func (d *Dispatcher) goalDelete(ctx context.Context, params json.RawMessage) (Result, error) {
	var p goalIDParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	if err := d.planner.DeleteGoal(ctx, p.ID); err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("goal %s deleted", p.ID), nil), nil
}

func (d *Dispatcher) goalDay(ctx context.Context, params json.RawMessage) (Result, error) {
	var p dateParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	out, err := d.planner.Day(ctx, p.Date)
	if err != nil {
		return Result{}, err
	}
	return success(out), nil
}

func (d *Dispatcher) goalDailyUpdate(ctx context.Context, params json.RawMessage) (Result, error) {
	var p dailyGoalsParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	var entries []dailyGoalFields
	if err := decodeJSON(p.GoalJSON, &entries); err != nil {
		return Result{}, fmt.Errorf("goal_json must be a JSON array: %w", err)
	}
	input := plannerdto.DailyGoalsInput{Date: p.Date, Goals: make([]plannerdto.DailyGoalInput, 0, len(entries))}
	for i := range entries {
		entry := entries[i]
		if err := d.check(&entry); err != nil {
			return Result{}, fmt.Errorf("goal %d: %w", i, err)
		}
		subject, err := rawText(entry.Subject)
		if err != nil {
			return Result{}, err
		}
		input.Goals = append(input.Goals, plannerdto.DailyGoalInput{
			ID:                entry.ID,
			Task:              entry.Task,
			Completed:         *entry.Completed,
			Subject:           subject,
			TotalProblems:     entry.TotalProblems,
			CompletedProblems: entry.CompletedProblems,
			Tags:              entry.Tags,
			Details:           entry.Details,
			CreatedAt:         entry.CreatedAt,
		})
	}
	out, err := d.planner.UpdateDailyGoals(ctx, input)
	if err != nil {
		return Result{}, err
	}
	return successMessage(fmt.Sprintf("goals for %s updated", out.Date), out), nil
}

func (d *Dispatcher) dbReconstruct(ctx context.Context, params json.RawMessage) (Result, error) {
	var p reconstructParams
	if err := d.bind(params, &p); err != nil {
		return Result{}, err
	}
	var input recoverydto.RebuildInput
	if err := decodeJSON(p.JSONData, &input); err != nil {
		return Result{}, err
	}
	for i, session := range input.Sessions {
		for j := range session.Details {
			if err := d.check(&session.Details[j]); err != nil {
				return Result{}, fmt.Errorf("session %d detail %d: %w", i, j, err)
			}
		}
	}
	out, err := d.recovery.Rebuild(ctx, input)
	if err != nil {
		return Result{}, err
	}
	return successMessage("database rebuilt from JSON", out), nil
}
