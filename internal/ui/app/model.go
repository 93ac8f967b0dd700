package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plannerdto "studylog/internal/modules/planner/dto"
	recoverydto "studylog/internal/modules/recovery/dto"
	sessiondto "studylog/internal/modules/session/dto"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/ui/components"
	"studylog/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.TransitionOutput, error)
	Break(ctx context.Context, input sessiondto.BreakInput) (sessiondto.TransitionOutput, error)
	Resume(ctx context.Context, input sessiondto.ResumeInput) (sessiondto.TransitionOutput, error)
	End(ctx context.Context) (sessiondto.TransitionOutput, error)
	Merge(ctx context.Context, input sessiondto.MergeInput) (sessiondto.MergeOutput, error)
	ConsolidateBreak(ctx context.Context) (sessiondto.EntryOutput, error)
	UpdateSessionSummary(ctx context.Context, input sessiondto.SessionSummaryInput) (sessiondto.EntryOutput, error)
	Active(ctx context.Context) (sessiondto.ActiveOutput, error)
	Day(ctx context.Context, date string) (sessiondto.DayOutput, error)
}

type plannerPort interface {
	AddGoal(ctx context.Context, input plannerdto.AddGoalInput) (plannerdto.GoalOutput, error)
	Day(ctx context.Context, date string) (plannerdto.DayPlanOutput, error)
}

type recoveryPort interface {
	Undo(ctx context.Context) (recoverydto.RecoveryOutput, error)
	Redo(ctx context.Context) (recoverydto.RecoveryOutput, error)
	SnapshotNow(ctx context.Context, input recoverydto.SnapshotInput) (recoverydto.SnapshotOutput, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

type dayLoadedMsg struct {
	active sessiondto.ActiveOutput
	log    sessiondto.DayOutput
	plan   plannerdto.DayPlanOutput
	err    error
}

// actionDoneMsg carries the outcome of any mutating command. The view reloads
// after every action because undo and redo can change anything.
type actionDoneMsg struct {
	status string
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Break   key.Binding
	Resume  key.Binding
	End     key.Binding
	Undo    key.Binding
	Redo    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Break:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break")),
		Resume:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end session")),
		Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "redo")),
		Refresh: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "reload")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Break, k.Resume, k.End, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Break, k.Resume, k.End},
		{k.Undo, k.Redo, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model: today's log and plan side by side, a
// status line, the help overlay and the command palette. Every mutation goes
// through the ports, so each one is covered by the usual snapshots.
type Model struct {
	session  sessionPort
	planner  plannerPort
	recovery recoveryPort
	clock    clock.Clock

	active sessiondto.ActiveOutput
	log    sessiondto.DayOutput
	plan   plannerdto.DayPlanOutput

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	failed   bool
	// busy is set from the moment a command is sent until the reload that
	// follows it lands; action keys are ignored meanwhile.
	busy   bool
	width  int
	height int
}

func NewModel(session sessionPort, planner plannerPort, recovery recoveryPort, clk clock.Clock) Model {
	return Model{
		session:  session,
		planner:  planner,
		recovery: recovery,
		clock:    clk,
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(paletteHints...),
		status:   "ready",
		busy:     true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width

	case dayLoadedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "load: " + msg.err.Error()
			m.failed = true
			return m, nil
		}
		m.active = msg.active
		m.log = msg.log
		m.plan = msg.plan

	case actionDoneMsg:
		m.failed = msg.err != nil
		if m.failed {
			m.status = describeError(msg.err)
		} else {
			m.status = msg.status
		}
		return m, m.loadCmd()

	case components.PaletteSubmitMsg:
		if m.busy && strings.TrimSpace(msg.Input) != "" {
			m.status = msgBusy
			return m, nil
		}
		next, cmd := m.executePalette(msg.Input)
		if cmd != nil {
			next.busy = true
		}
		return next, cmd

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Palette):
			cmd := m.palette.Open()
			return m, cmd
		case key.Matches(msg, m.keys.Start):
			cmd := m.palette.OpenWith("start ")
			return m, cmd
		case key.Matches(msg, m.keys.Break, m.keys.Resume, m.keys.End, m.keys.Undo, m.keys.Redo, m.keys.Refresh):
			return m.runKey(msg)
		}
	}
	return m, nil
}

const msgBusy = "busy: previous command still running"

// runKey starts the command bound to an action key unless one is in flight.
// Undo and redo swap the database file, so two of them must never overlap.
func (m Model) runKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = msgBusy
		return m, nil
	}
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Break):
		cmd = m.breakCmd(nil)
	case key.Matches(msg, m.keys.Resume):
		cmd = m.resumeCmd(nil)
	case key.Matches(msg, m.keys.End):
		cmd = m.endCmd()
	case key.Matches(msg, m.keys.Undo):
		cmd = m.undoCmd()
	case key.Matches(msg, m.keys.Redo):
		cmd = m.redoCmd()
	case key.Matches(msg, m.keys.Refresh):
		m.status = "reloaded"
		cmd = m.loadCmd()
	}
	m.busy = true
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		paneW := max(m.width/2-2, 20)
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			theme.PaneActive.Width(paneW).Render(m.renderLog()),
			theme.Pane.Width(paneW).Render(m.renderPlan()),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	date := m.log.Date
	if date == "" {
		date = m.today()
	}
	bar := "studylog  " + theme.Muted.Render(date) + "  " +
		theme.Hot.Render(fmt.Sprintf("%d min", m.log.TotalDayStudyMinutes))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderLog() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Log") + "\n")
	if len(m.log.Sessions) == 0 {
		sb.WriteString(theme.Muted.Render("no sessions yet") + "\n")
	}
	for _, s := range m.log.Sessions {
		fmt.Fprintf(&sb, "#%d %s  %s-%s  %d min\n",
			s.SessionID, deref(s.Subject), s.SessionStartTime, s.SessionEndTime, s.TotalStudyMinutes)
		for _, e := range s.Details {
			line := fmt.Sprintf("  %-6s %s", e.EventType, deref(e.Content))
			if e.EndTime == nil {
				line = theme.Hot.Render(line + "  (open)")
			}
			sb.WriteString(line + "\n")
		}
	}
	if len(m.log.SubjectsStudied) > 0 {
		sb.WriteString("\n" + theme.Muted.Render("subjects: "+strings.Join(m.log.SubjectsStudied, ", ")) + "\n")
	}
	return sb.String()
}

func (m Model) renderPlan() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Plan") + "\n")
	if m.plan.Summary != nil {
		sb.WriteString(*m.plan.Summary + "\n\n")
	}
	if len(m.plan.Goals) == 0 {
		sb.WriteString(theme.Muted.Render("no goals for today") + "\n")
	}
	for _, g := range m.plan.Goals {
		mark := "[ ]"
		if g.Completed {
			mark = theme.Done.Render("[x]")
		}
		line := mark + " " + g.Task
		if g.TotalProblems != nil && g.CompletedProblems != nil {
			line += fmt.Sprintf(" (%d/%d)", *g.CompletedProblems, *g.TotalProblems)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.failed {
		left = theme.Alert.Render(left)
	}
	if m.active.Active && m.active.Entry != nil {
		left = theme.Hot.Render("● "+deref(m.active.Entry.Subject)) + "  " + left
	} else if m.active.State == "on_break" {
		left = theme.Muted.Render("◌ on break") + "  " + left
	}
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

// paletteHints must stay in sync with the switch in executePalette.
var paletteHints = []string{
	"start <subject> | <content>",
	"break [content]",
	"resume [memo]",
	"end",
	"merge <first-start-id> <second-start-id>",
	"consolidate",
	"summary <text>",
	"goal <task>",
	"undo",
	"redo",
	"backup [description]",
}

func (m Model) executePalette(input string) (Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "start":
		subject, content, ok := strings.Cut(rest, "|")
		subject, content = strings.TrimSpace(subject), strings.TrimSpace(content)
		if !ok || subject == "" || content == "" {
			m.status = "usage: start <subject> | <content>"
			return m, nil
		}
		return m, m.startCmd(subject, content)

	case "break":
		return m, m.breakCmd(optional(rest))

	case "resume":
		return m, m.resumeCmd(optional(rest))

	case "end":
		return m, m.endCmd()

	case "merge":
		if len(parts) != 3 {
			m.status = "usage: merge <first-start-id> <second-start-id>"
			return m, nil
		}
		first, err1 := strconv.ParseInt(parts[1], 10, 64)
		second, err2 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			m.status = "merge ids must be integers"
			return m, nil
		}
		return m, m.mergeCmd(first, second)

	case "consolidate":
		return m, m.consolidateCmd()

	case "summary":
		if rest == "" {
			m.status = "usage: summary <text>"
			return m, nil
		}
		return m, m.summaryCmd(rest)

	case "goal":
		if rest == "" {
			m.status = "usage: goal <task>"
			return m, nil
		}
		return m, m.goalCmd(rest)

	case "undo":
		return m, m.undoCmd()

	case "redo":
		return m, m.redoCmd()

	case "backup":
		return m, m.backupCmd(rest)

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) today() string {
	return clock.Date(m.clock.Now())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		date := m.today()
		active, err := m.session.Active(ctx)
		if err != nil {
			return dayLoadedMsg{err: err}
		}
		log, err := m.session.Day(ctx, date)
		if err != nil {
			return dayLoadedMsg{err: err}
		}
		plan, err := m.planner.Day(ctx, date)
		if err != nil {
			return dayLoadedMsg{err: err}
		}
		return dayLoadedMsg{active: active, log: log, plan: plan}
	}
}

func (m Model) startCmd(subject, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Start(context.Background(), sessiondto.StartInput{Subject: subject, Content: content})
		return actionDoneMsg{status: "session started: " + subject, err: err}
	}
}

func (m Model) breakCmd(content *string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Break(context.Background(), sessiondto.BreakInput{Content: content})
		return actionDoneMsg{status: "on break", err: err}
	}
}

func (m Model) resumeCmd(memo *string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.Resume(context.Background(), sessiondto.ResumeInput{Memo: memo})
		return actionDoneMsg{status: "resumed", err: err}
	}
}

func (m Model) endCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.End(context.Background())
		if err != nil {
			return actionDoneMsg{err: err}
		}
		status := "session ended"
		if out.Closed != nil && out.Closed.DurationMinutes != nil {
			status = fmt.Sprintf("session ended (+%d min)", *out.Closed.DurationMinutes)
		}
		return actionDoneMsg{status: status}
	}
}

func (m Model) mergeCmd(first, second int64) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Merge(context.Background(), sessiondto.MergeInput{Session1ID: first, Session2ID: second})
		return actionDoneMsg{status: fmt.Sprintf("merged into session #%d", out.SessionID), err: err}
	}
}

func (m Model) consolidateCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.session.ConsolidateBreak(context.Background())
		return actionDoneMsg{status: "break consolidated", err: err}
	}
}

func (m Model) summaryCmd(text string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.UpdateSessionSummary(context.Background(), sessiondto.SessionSummaryInput{Summary: &text})
		return actionDoneMsg{status: fmt.Sprintf("summary saved on #%d", out.ID), err: err}
	}
}

func (m Model) goalCmd(task string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.planner.AddGoal(context.Background(), plannerdto.AddGoalInput{Date: m.today(), Task: task})
		return actionDoneMsg{status: "goal added", err: err}
	}
}

func (m Model) undoCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.recovery.Undo(context.Background())
		return actionDoneMsg{status: out.Message, err: err}
	}
}

func (m Model) redoCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.recovery.Redo(context.Background())
		return actionDoneMsg{status: out.Message, err: err}
	}
}

func (m Model) backupCmd(description string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.recovery.SnapshotNow(context.Background(), recoverydto.SnapshotInput{Description: description})
		return actionDoneMsg{status: "snapshot " + out.Name, err: err}
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func describeError(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrActiveSessionExists):
		return "a session is already running"
	case errors.Is(err, apperrors.ErrNoActiveSession):
		return "no active session"
	}
	return string(apperrors.KindOf(err)) + ": " + err.Error()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
