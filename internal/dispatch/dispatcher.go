// Package dispatch routes named actions with JSON parameters to the session,
// planner and recovery use cases and shapes their outcomes as Results.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"

	plannerin "studylog/internal/modules/planner/port/in"
	recoveryin "studylog/internal/modules/recovery/port/in"
	sessionin "studylog/internal/modules/session/port/in"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/logging"
)

type handler func(ctx context.Context, params json.RawMessage) (Result, error)

type Dispatcher struct {
	session  sessionin.Usecase
	planner  plannerin.Usecase
	recovery recoveryin.Usecase
	validate *validator.Validate
	logger   hclog.Logger
	handlers map[string]handler
	aliases  map[string]string
}

// aliases maps short names and the names older clients use to the primary
// action names.
var aliases = map[string]string{
	"start":             "session.start",
	"break":             "session.break",
	"resume":            "session.resume",
	"end":               "session.end",
	"merge":             "session.merge",
	"consolidate_break": "session.consolidate_break",
	"undo":              "db.undo",
	"redo":              "db.redo",
	"snapshot-now":      "db.backup",

	"log.create":               "session.start",
	"log.break":                "session.break",
	"log.resume":               "session.resume",
	"log.end_session":          "session.end",
	"log.get":                  "log.day",
	"summary.session_update":   "session.summary_update",
	"goal.add_to_date":         "goal.add",
	"db.consolidate_break":     "session.consolidate_break",
	"db.recalculate_durations": "log.recalculate_durations",
}

func New(session sessionin.Usecase, planner plannerin.Usecase, recovery recoveryin.Usecase, logger hclog.Logger) *Dispatcher {
	d := &Dispatcher{
		session:  session,
		planner:  planner,
		recovery: recovery,
		validate: validator.New(),
		logger:   logging.OrNull(logger).Named("dispatch"),
		aliases:  aliases,
	}
	d.handlers = map[string]handler{
		"session.start":             d.sessionStart,
		"session.break":             d.sessionBreak,
		"session.resume":            d.sessionResume,
		"session.end":               d.sessionEnd,
		"session.merge":             d.sessionMerge,
		"session.consolidate_break": d.sessionConsolidate,
		"session.active":            d.sessionActive,
		"session.summary_update":    d.sessionSummaryUpdate,
		"log.get_entry":             d.logGetEntry,
		"log.update_entry":          d.logUpdateEntry,
		"log.update_end_time":       d.logUpdateEndTime,
		"log.delete":                d.logDelete,
		"log.day":                   d.logDay,
		"log.recalculate_durations": d.logRecalculate,
		"db.undo":                   d.dbUndo,
		"db.redo":                   d.dbRedo,
		"db.backup":                 d.dbBackup,
		"db.restore":                d.dbRestore,
		"db.snapshots":              d.dbSnapshots,
		"db.reconstruct":            d.dbReconstruct,
		"summary.daily_update":      d.summaryDailyUpdate,
		"summary.daily_get":         d.summaryDailyGet,
		"goal.add":                  d.goalAdd,
		"goal.get":                  d.goalGet,
		"goal.update":               d.goalUpdate,
		"goal.delete":               d.goalDelete,
		"goal.day":                  d.goalDay,
		"goal.daily_update":         d.goalDailyUpdate,
	}
	return d
}

// Actions lists the primary action names.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs one action. Failures are reported inside the Result; Execute
// itself never returns an error.
func (d *Dispatcher) Execute(ctx context.Context, action string, params json.RawMessage) Result {
	name := action
	if primary, ok := d.aliases[action]; ok {
		name = primary
	}
	h, ok := d.handlers[name]
	if !ok {
		err := fmt.Errorf("unknown action %q: %w", action, apperrors.ErrInvalidInput)
		d.logger.Warn("unknown action", "action", action)
		return failure(err)
	}
	params = bytes.TrimSpace(params)
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		params = json.RawMessage("{}")
	}
	result, err := h(ctx, params)
	if err != nil {
		kind := apperrors.KindOf(err)
		if kind == apperrors.KindInternal || kind == apperrors.KindStorage {
			d.logger.Error("action failed", "action", name, "kind", kind, "error", err)
		} else {
			d.logger.Debug("action rejected", "action", name, "kind", kind, "error", err)
		}
		return failure(err)
	}
	d.logger.Debug("action done", "action", name, "status", result.Status)
	return result
}

type request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// ExecuteJSON accepts {"action": "...", "params": {...}}.
func (d *Dispatcher) ExecuteJSON(ctx context.Context, payload []byte) Result {
	var req request
	if err := json.Unmarshal(payload, &req); err != nil {
		return failure(fmt.Errorf("request is not valid JSON: %v: %w", err, apperrors.ErrInvalidInput))
	}
	if req.Action == "" {
		return failure(fmt.Errorf("request has no action: %w", apperrors.ErrInvalidInput))
	}
	return d.Execute(ctx, req.Action, req.Params)
}

// bind decodes params into dst and runs its validate tags.
func (d *Dispatcher) bind(params json.RawMessage, dst any) error {
	if err := decodeJSON(params, dst); err != nil {
		return err
	}
	return d.check(dst)
}

// check runs the validate tags of one decoded struct.
func (d *Dispatcher) check(dst any) error {
	if err := d.validate.Struct(dst); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			first := invalid[0]
			return fmt.Errorf("parameter %s fails %q: %w", first.Field(), first.Tag(), apperrors.ErrInvalidInput)
		}
		return fmt.Errorf("%v: %w", err, apperrors.ErrInvalidInput)
	}
	return nil
}
