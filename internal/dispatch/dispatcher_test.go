package dispatch_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studylog/internal/bootstrap"
	"studylog/internal/dispatch"
	"studylog/internal/platform/config"
	apperrors "studylog/internal/platform/errors"
)

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	app, err := bootstrap.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app.Dispatcher
}

// fields renders a Result the way clients receive it.
func fields(t *testing.T, result dispatch.Result) map[string]any {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func run(t *testing.T, d *dispatch.Dispatcher, action, params string) dispatch.Result {
	t.Helper()
	return d.Execute(context.Background(), action, json.RawMessage(params))
}

func requireKind(t *testing.T, result dispatch.Result, kind apperrors.Kind) {
	t.Helper()
	require.Equal(t, dispatch.StatusError, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, kind, result.Error.Kind, result.Error.Message)
}

func TestResultJSONShape(t *testing.T) {
	t.Parallel()

	object := fields(t, dispatch.Result{Status: dispatch.StatusSuccess, Message: "done", Payload: map[string]int{"updated": 2}})
	assert.Equal(t, map[string]any{"status": "success", "message": "done", "updated": float64(2)}, object)

	list := fields(t, dispatch.Result{Status: dispatch.StatusSuccess, Payload: []string{"a"}})
	assert.Equal(t, []any{"a"}, list["data"])
	assert.NotContains(t, list, "message")

	failed := fields(t, dispatch.Result{Status: dispatch.StatusError, Error: &dispatch.ErrorBody{Kind: apperrors.KindNotFound, Message: "gone"}})
	assert.Equal(t, "error", failed["status"])
	assert.Equal(t, map[string]any{"kind": "not_found", "message": "gone"}, failed["error"])
}

func TestUnknownActionIsValidationError(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	requireKind(t, run(t, d, "session.teleport", `{}`), apperrors.KindValidation)
}

func TestExecuteJSONRejectsMalformedRequests(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)
	ctx := context.Background()

	requireKind(t, d.ExecuteJSON(ctx, []byte(`not json`)), apperrors.KindValidation)
	requireKind(t, d.ExecuteJSON(ctx, []byte(`{"params": {}}`)), apperrors.KindValidation)

	result := d.ExecuteJSON(ctx, []byte(`{"action": "session.active"}`))
	assert.Equal(t, dispatch.StatusSuccess, result.Status)
}

func TestUndoAndRedoWithNothingToDoAreInfo(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	for _, action := range []string{"undo", "db.redo"} {
		result := run(t, d, action, ``)
		assert.Equal(t, dispatch.StatusInfo, result.Status, action)
		assert.NotEmpty(t, result.Message, action)
	}
}

func TestSessionFlowThroughAliases(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	started := fields(t, run(t, d, "start", `{"subject": "Go", "content": "channels"}`))
	require.Equal(t, "success", started["status"], started)
	assert.Equal(t, "active", started["state"])

	active := fields(t, run(t, d, "session.active", ``))
	assert.Equal(t, true, active["active"])
	assert.Equal(t, "START", active["event_type"])

	requireKind(t, run(t, d, "session.start", `{"subject": "Go", "content": "again"}`), apperrors.KindValidation)

	onBreak := fields(t, run(t, d, "log.break", `{"break_content": "coffee"}`))
	require.Equal(t, "success", onBreak["status"], onBreak)
	assert.Equal(t, "on_break", onBreak["state"])
	opened := onBreak["opened"].(map[string]any)
	assert.Equal(t, "coffee", opened["content"])

	active = fields(t, run(t, d, "session.active", ``))
	assert.Equal(t, false, active["active"])
	assert.Equal(t, "on_break", active["state"])

	resumed := fields(t, run(t, d, "resume", `{"memo": "back"}`))
	assert.Equal(t, "active", resumed["state"])
	assert.Equal(t, "Go", resumed["opened"].(map[string]any)["subject"])

	ended := fields(t, run(t, d, "log.end_session", ``))
	assert.Equal(t, "no_active_entry", ended["state"])

	requireKind(t, run(t, d, "end", ``), apperrors.KindValidation)
}

func TestUndoRedoRestoresSessionState(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	require.Equal(t, dispatch.StatusSuccess, run(t, d, "start", `{"subject": "Go", "content": "maps"}`).Status)

	undone := run(t, d, "undo", ``)
	require.Equal(t, dispatch.StatusSuccess, undone.Status, undone.Error)
	active := fields(t, run(t, d, "session.active", ``))
	assert.Equal(t, "no_active_entry", active["state"])

	redone := run(t, d, "redo", ``)
	require.Equal(t, dispatch.StatusSuccess, redone.Status, redone.Error)
	active = fields(t, run(t, d, "session.active", ``))
	assert.Equal(t, "active", active["state"])
}

func TestValidatorRejectsBadParams(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	cases := []struct {
		action string
		params string
	}{
		{"session.start", `{"subject": "Go"}`},
		{"session.merge", `{"session1_id": 3, "session2_id": 3}`},
		{"session.merge", `{"session1_id": 0, "session2_id": 3}`},
		{"log.day", `{}`},
		{"log.day", `{"date": "03/01/2026"}`},
		{"db.backup", `{"pool": "forever"}`},
		{"db.restore", `{}`},
		{"goal.add", `{"date": "2026-03-01"}`},
		{"goal.add", `{"goal": {"subject": "Go"}}`},
		{"log.get_entry", `{"id": "seven"}`},
	}
	for _, tc := range cases {
		result := run(t, d, tc.action, tc.params)
		requireKind(t, result, apperrors.KindValidation)
	}
}

func TestGoalAddAcceptsStringEncodedGoal(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	added := fields(t, run(t, d, "goal.add_to_date", `{"date": "2026-03-01", "goal": "{\"task\": \"read ch. 3\", \"total_problems\": 5}"}`))
	require.Equal(t, "success", added["status"], added)
	goal := added["goal"].(map[string]any)
	assert.Equal(t, "read ch. 3", goal["task"])
	assert.Equal(t, float64(0), goal["completed_problems"])
	assert.Equal(t, []any{}, goal["tags"])

	day := fields(t, run(t, d, "goal.day", `{"date": "2026-03-01"}`))
	require.Len(t, day["goals"], 1)

	updated := fields(t, run(t, d, "goal.update", `{"id": "`+goal["id"].(string)+`", "field": "completed", "value": true}`))
	require.Equal(t, "success", updated["status"], updated)
	assert.Equal(t, true, updated["goal"].(map[string]any)["completed"])

	requireKind(t, run(t, d, "goal.get", `{"id": "missing"}`), apperrors.KindNotFound)
}

func TestSnapshotsListsManualBackup(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	backup := fields(t, run(t, d, "snapshot-now", `{"pool": "long-term", "description": "before exam"}`))
	require.Equal(t, "success", backup["status"], backup)
	snap := backup["snapshot"].(map[string]any)
	assert.Equal(t, "long_term", snap["pool"])

	listed := fields(t, run(t, d, "db.snapshots", `{"pool": "long_term"}`))
	require.Len(t, listed["snapshots"], 1)
}

func TestActionsAreSorted(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	actions := d.Actions()
	assert.Contains(t, actions, "session.start")
	assert.Contains(t, actions, "db.undo")
	assert.NotContains(t, actions, "undo")
	assert.IsIncreasing(t, actions)
}

func TestGoalDailyUpdateWritesBatch(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	written := fields(t, run(t, d, "goal.daily_update", `{"date": "2026-03-01", "goal_json": "[{\"task\": \"ch. 1\", \"completed\": false, \"subject\": \"Math\", \"total_problems\": 4}, {\"id\": \"fixed\", \"task\": \"ch. 2\", \"completed\": true, \"subject\": null}]"}`))
	require.Equal(t, "success", written["status"], written)
	goals := written["goals"].([]any)
	require.Len(t, goals, 2)
	assert.Equal(t, "Math", goals[0].(map[string]any)["subject"])
	assert.Nil(t, goals[1].(map[string]any)["subject"])

	replaced := fields(t, run(t, d, "goal.daily_update", `{"date": "2026-03-01", "goal_json": [{"id": "fixed", "task": "ch. 2 again", "completed": false, "subject": "Math"}]}`))
	require.Equal(t, "success", replaced["status"], replaced)
	day := fields(t, run(t, d, "goal.day", `{"date": "2026-03-01"}`))
	require.Len(t, day["goals"], 2)

	requireKind(t, run(t, d, "goal.daily_update", `{"goal_json": [{"task": "no subject", "completed": false}]}`), apperrors.KindValidation)
	requireKind(t, run(t, d, "goal.daily_update", `{"goal_json": {"task": "not a list"}}`), apperrors.KindValidation)
	requireKind(t, run(t, d, "goal.daily_update", `{"date": "2026-03-01"}`), apperrors.KindValidation)
}

func TestReconstructIsUndoable(t *testing.T) {
	t.Parallel()
	d := newDispatcher(t)

	require.Equal(t, dispatch.StatusSuccess, run(t, d, "start", `{"subject": "Go", "content": "before rebuild"}`).Status)

	rebuilt := fields(t, run(t, d, "db.reconstruct", `{"json_data": {"daily_summary": "rebuilt", "sessions": [{"subject": "Rust", "details": [{"event_type": "START", "start_time": "08:00", "end_time": "08:30", "duration_minutes": 30}]}]}}`))
	require.Equal(t, "success", rebuilt["status"], rebuilt)
	assert.Equal(t, float64(1), rebuilt["entries"])

	active := fields(t, run(t, d, "session.active", ``))
	assert.Equal(t, "no_active_entry", active["state"])

	undone := run(t, d, "undo", ``)
	require.Equal(t, dispatch.StatusSuccess, undone.Status, undone.Error)
	active = fields(t, run(t, d, "session.active", ``))
	assert.Equal(t, "active", active["state"])

	requireKind(t, run(t, d, "db.reconstruct", `{}`), apperrors.KindValidation)
	requireKind(t, run(t, d, "db.reconstruct", `{"json_data": "{\"sessions\": [{\"details\": [{\"event_type\": \"NAP\", \"start_time\": \"08:00\"}]}]}"}`), apperrors.KindValidation)
}
