package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"studylog/internal/bootstrap"
	"studylog/internal/dispatch"
	plannerdto "studylog/internal/modules/planner/dto"
	recoverydto "studylog/internal/modules/recovery/dto"
	sessiondto "studylog/internal/modules/session/dto"
	"studylog/internal/platform/clock"
	"studylog/internal/platform/config"
	"studylog/internal/platform/logging"
)

// errActionFailed marks an execute call whose Result was already printed.
var errActionFailed = errors.New("action failed")

type rootFlags struct {
	home        string
	logLevel    string
	metricsFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errActionFailed) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "studylog",
		Short:         "Study session log with snapshot undo/redo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return bootstrap.WriteMetrics(flags.metricsFile)
		},
	}
	root.PersistentFlags().StringVar(&flags.home, "home", config.DefaultHome(), "data directory (record store, snapshots, config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override: trace|debug|info|warn|error")
	root.PersistentFlags().StringVar(&flags.metricsFile, "metrics-textfile", "", "write prometheus metrics to this file after the command")

	root.AddCommand(newExecuteCmd(flags))
	root.AddCommand(newActionsCmd(flags))
	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newLogCmd(flags))
	root.AddCommand(newPlanCmd(flags))
	root.AddCommand(newUndoCmd(flags), newRedoCmd(flags))
	root.AddCommand(newBackupCmd(flags), newSnapshotsCmd(flags), newRestoreCmd(flags), newReconstructCmd(flags))
	root.AddCommand(newTUICmd(flags))
	return root
}

func loadApp(flags *rootFlags) (*bootstrap.App, error) {
	cfg, err := config.New(flags.home)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return bootstrap.New(context.Background(), cfg, logging.New(cfg.LogLevel, os.Stderr))
}

// withApp opens the app for one command and closes it afterwards.
func withApp(flags *rootFlags, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(flags)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func newExecuteCmd(flags *rootFlags) *cobra.Command {
	var request string
	cmd := &cobra.Command{
		Use:   "execute [action] [params-json]",
		Short: "Run one action and print its JSON result",
		Long: "Run one action and print its JSON result.\n\n" +
			"Either pass the action name and an optional JSON params object, or a full\n" +
			"request with --request '{\"action\": \"...\", \"params\": {...}}' (use - to read stdin).",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if request == "" && len(args) == 0 {
				return fmt.Errorf("an action or --request is required")
			}
			return withApp(flags, func(app *bootstrap.App) error {
				var result dispatch.Result
				switch {
				case request == "-":
					raw, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read request: %w", err)
					}
					result = app.Dispatcher.ExecuteJSON(cmd.Context(), raw)
				case request != "":
					result = app.Dispatcher.ExecuteJSON(cmd.Context(), []byte(request))
				default:
					var params json.RawMessage
					if len(args) == 2 {
						params = json.RawMessage(args[1])
					}
					result = app.Dispatcher.Execute(cmd.Context(), args[0], params)
				}
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if result.Status == dispatch.StatusError {
					return errActionFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&request, "request", "", "full JSON request, or - for stdin")
	return cmd
}

func newActionsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the action names accepted by execute",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				for _, name := range app.Dispatcher.Actions() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func printTransition(w io.Writer, verb string, out sessiondto.TransitionOutput) {
	if out.Closed != nil {
		minutes := 0
		if out.Closed.DurationMinutes != nil {
			minutes = *out.Closed.DurationMinutes
		}
		_, _ = fmt.Fprintf(w, "closed #%d %s %dmin\n", out.Closed.ID, out.Closed.EventType, minutes)
	}
	if out.Opened != nil {
		_, _ = fmt.Fprintf(w, "%s #%d %s subject=%s at=%s\n", verb, out.Opened.ID, out.Opened.EventType, deref(out.Opened.Subject), out.Opened.StartTime)
	}
	_, _ = fmt.Fprintf(w, "state: %s\n", out.State)
}

func newSessionCmd(flags *rootFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Study session lifecycle"}

	var subject, content, memo, impression string
	start := &cobra.Command{
		Use:   "start --subject <subject> --content <text>",
		Short: "Start a study session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(subject) == "" || strings.TrimSpace(content) == "" {
				return fmt.Errorf("--subject and --content are required")
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(cmd.Context(), subject, content, optional(memo), optional(impression))
				if err != nil {
					return err
				}
				printTransition(cmd.OutOrStdout(), "started", out)
				return nil
			})
		},
	}
	start.Flags().StringVar(&subject, "subject", "", "subject studied")
	start.Flags().StringVar(&content, "content", "", "what is being studied")
	start.Flags().StringVar(&memo, "memo", "", "optional memo")
	start.Flags().StringVar(&impression, "impression", "", "optional impression")

	var breakContent string
	brk := &cobra.Command{
		Use:   "break",
		Short: "Pause the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Break(cmd.Context(), optional(breakContent))
				if err != nil {
					return err
				}
				printTransition(cmd.OutOrStdout(), "break", out)
				return nil
			})
		},
	}
	brk.Flags().StringVar(&breakContent, "content", "", "what the break is for")

	var resumeMemo, resumeImpression string
	resume := &cobra.Command{
		Use:   "resume",
		Short: "Resume after a break",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Resume(cmd.Context(), optional(resumeMemo), optional(resumeImpression))
				if err != nil {
					return err
				}
				printTransition(cmd.OutOrStdout(), "resumed", out)
				return nil
			})
		},
	}
	resume.Flags().StringVar(&resumeMemo, "memo", "", "optional memo")
	resume.Flags().StringVar(&resumeImpression, "impression", "", "optional impression")

	end := &cobra.Command{
		Use:   "end",
		Short: "End the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.End(cmd.Context())
				if err != nil {
					return err
				}
				printTransition(cmd.OutOrStdout(), "ended", out)
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the session state and the open entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Active(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "state: %s active=%t\n", out.State, out.Active)
				if out.Entry != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "open #%d %s subject=%s since=%s\n", out.Entry.ID, out.Entry.EventType, deref(out.Entry.Subject), out.Entry.StartTime)
				}
				return nil
			})
		},
	}

	merge := &cobra.Command{
		Use:   "merge <first-start-id> <second-start-id>",
		Short: "Merge two sessions with the same summary into one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("first id: %w", err)
			}
			second, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("second id: %w", err)
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Merge(cmd.Context(), first, second)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "merged into session #%d: break #%d, resumed #%d\n", out.SessionID, out.Break.ID, out.Resumed.ID)
				return nil
			})
		},
	}

	consolidate := &cobra.Command{
		Use:   "consolidate",
		Short: "Fold the newest BREAK into the RESUME that follows it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.ConsolidateBreak(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "consolidated into #%d content=%q\n", out.ID, deref(out.Content))
				return nil
			})
		},
	}

	session.AddCommand(start, brk, resume, end, status, merge, consolidate)
	return session
}

func today(app *bootstrap.App, date string) string {
	if date != "" {
		return date
	}
	return clock.Date(app.Clock.Now())
}

func newLogCmd(flags *rootFlags) *cobra.Command {
	log := &cobra.Command{Use: "log", Short: "Inspect the study log"}

	var date string
	var asJSON bool
	day := &cobra.Command{
		Use:   "day [--date YYYY-MM-DD]",
		Short: "Show one day grouped into sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Day(cmd.Context(), today(app, date))
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), out)
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s total=%dmin subjects=%s\n", out.Date, out.TotalDayStudyMinutes, strings.Join(out.SubjectsStudied, ","))
				for _, s := range out.Sessions {
					_, _ = fmt.Fprintf(w, "#%d\t%s\t%s-%s\t%dmin\t%s\n", s.SessionID, deref(s.Subject), s.SessionStartTime, s.SessionEndTime, s.TotalStudyMinutes, deref(s.Summary))
				}
				return nil
			})
		},
	}
	day.Flags().StringVar(&date, "date", "", "day to show (default today)")
	day.Flags().BoolVar(&asJSON, "json", false, "print the day as JSON")

	log.AddCommand(day)
	return log
}

func newPlanCmd(flags *rootFlags) *cobra.Command {
	plan := &cobra.Command{Use: "plan", Short: "Daily goals and summaries"}

	var date string
	day := &cobra.Command{
		Use:   "day [--date YYYY-MM-DD]",
		Short: "Show the summary and goals of one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.PlannerCLI.Day(cmd.Context(), today(app, date))
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s %s\n", out.Date, deref(out.Summary))
				if len(out.Goals) == 0 {
					_, _ = fmt.Fprintln(w, "no goals")
				}
				for _, g := range out.Goals {
					_, _ = fmt.Fprintf(w, "%s\tdone=%t\t%s\n", g.ID, g.Completed, g.Task)
				}
				return nil
			})
		},
	}
	day.Flags().StringVar(&date, "date", "", "day to show (default today)")

	var goalDate, task, subject string
	var total int
	var tags []string
	add := &cobra.Command{
		Use:   "goal --task <text>",
		Short: "Add a goal to a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(task) == "" {
				return fmt.Errorf("--task is required")
			}
			input := plannerdto.AddGoalInput{Date: goalDate, Task: task, Subject: optional(subject), Tags: tags}
			if total > 0 {
				input.TotalProblems = &total
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.PlannerCLI.AddGoal(cmd.Context(), input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal added: %s date=%s\n", out.ID, out.Date)
				return nil
			})
		},
	}
	add.Flags().StringVar(&goalDate, "date", "", "day (default today)")
	add.Flags().StringVar(&task, "task", "", "goal text")
	add.Flags().StringVar(&subject, "subject", "", "subject")
	add.Flags().IntVar(&total, "total-problems", 0, "number of problems to solve")
	add.Flags().StringSliceVar(&tags, "tags", nil, "tags")

	var summaryDate string
	summary := &cobra.Command{
		Use:   "summary <text>",
		Short: "Set the summary of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.PlannerCLI.SetSummary(cmd.Context(), summaryDate, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "summary saved for %s\n", out.Date)
				return nil
			})
		},
	}
	summary.Flags().StringVar(&summaryDate, "date", "", "day (default today)")

	var goalsDate string
	goals := &cobra.Command{
		Use:   "goals <json-file|->",
		Short: "Insert or replace a day's goals from a JSON array",
		Long: "Insert or replace a day's goals from a JSON array. Each entry needs task,\n" +
			"completed and subject; entries with an existing id replace that goal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readJSONArg(cmd, args[0])
			if err != nil {
				return err
			}
			params, err := json.Marshal(map[string]any{"date": goalsDate, "goal_json": json.RawMessage(raw)})
			if err != nil {
				return err
			}
			return withApp(flags, func(app *bootstrap.App) error {
				result := app.Dispatcher.Execute(cmd.Context(), "goal.daily_update", params)
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if result.Status == dispatch.StatusError {
					return errActionFailed
				}
				return nil
			})
		},
	}
	goals.Flags().StringVar(&goalsDate, "date", "", "day (default today)")

	plan.AddCommand(day, add, goals, summary)
	return plan
}

func newUndoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the newest short-term snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.RecoveryCLI.Undo(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				return nil
			})
		},
	}
}

func newRedoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the newest undone state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.RecoveryCLI.Redo(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				return nil
			})
		},
	}
}

func newBackupCmd(flags *rootFlags) *cobra.Command {
	var pool, description string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Take a snapshot now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.RecoveryCLI.Backup(cmd.Context(), pool, description)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s pool=%s\n", out.Path, out.Pool)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "short_term", "short_term|long_term|redo")
	cmd.Flags().StringVar(&description, "description", "", "journal description")
	return cmd
}

func newSnapshotsCmd(flags *rootFlags) *cobra.Command {
	var pool string
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List snapshots of a pool, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				items, err := app.RecoveryCLI.Snapshots(cmd.Context(), pool)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no snapshots")
					return nil
				}
				for _, s := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", s.Name, s.TakenAt.Format(clock.TimestampLayout), s.Size)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "short_term", "short_term|long_term|redo")
	return cmd
}

func newRestoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-path>",
		Short: "Replace the record store with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.RecoveryCLI.Restore(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				return nil
			})
		},
	}
}

func newReconstructCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reconstruct <json-file|->",
		Short: "Replace every entry, goal and summary with today's sessions from JSON",
		Long: "Replace every log entry, goal and daily summary with the sessions in a JSON\n" +
			"document ({\"daily_summary\": ..., \"sessions\": [...]}), dated today. The\n" +
			"previous contents are snapshotted first; undo brings them back.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readJSONArg(cmd, args[0])
			if err != nil {
				return err
			}
			var input recoverydto.RebuildInput
			if err := json.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return withApp(flags, func(app *bootstrap.App) error {
				out, err := app.RecoveryCLI.Rebuild(cmd.Context(), input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %s: %d sessions, %d entries\n", out.Date, out.Sessions, out.Entries)
				return nil
			})
		},
	}
}

// readJSONArg reads a file, or stdin for "-".
func readJSONArg(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", arg, err)
	}
	return raw, nil
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, bootstrap.RunTUI)
		},
	}
}
