package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"studylog/internal/dispatch"
	plannerinadapter "studylog/internal/modules/planner/adapter/in"
	planneroutadapter "studylog/internal/modules/planner/adapter/out"
	plannerin "studylog/internal/modules/planner/port/in"
	plannerservice "studylog/internal/modules/planner/service"
	plannerusecase "studylog/internal/modules/planner/usecase"
	recoveryinadapter "studylog/internal/modules/recovery/adapter/in"
	recoveryoutadapter "studylog/internal/modules/recovery/adapter/out"
	recoverydomain "studylog/internal/modules/recovery/domain"
	recoveryin "studylog/internal/modules/recovery/port/in"
	recoveryservice "studylog/internal/modules/recovery/service"
	recoveryusecase "studylog/internal/modules/recovery/usecase"
	sessioninadapter "studylog/internal/modules/session/adapter/in"
	sessionoutadapter "studylog/internal/modules/session/adapter/out"
	sessionin "studylog/internal/modules/session/port/in"
	sessionservice "studylog/internal/modules/session/service"
	sessionusecase "studylog/internal/modules/session/usecase"
	"studylog/internal/platform/clock"
	"studylog/internal/platform/config"
	"studylog/internal/platform/id"
	"studylog/internal/platform/logging"
	"studylog/internal/platform/recordstore"
	uiapp "studylog/internal/ui/app"
)

type App struct {
	Session  sessionin.Usecase
	Planner  plannerin.Usecase
	Recovery recoveryin.Usecase

	SessionCLI  sessioninadapter.CLIHandler
	PlannerCLI  plannerinadapter.CLIHandler
	RecoveryCLI recoveryinadapter.CLIHandler
	Dispatcher  *dispatch.Dispatcher

	Clock   clock.Clock
	Logger  hclog.Logger
	records *recordstore.Store
}

func New(ctx context.Context, cfg config.Config, logger hclog.Logger) (*App, error) {
	logger = logging.OrNull(logger)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{Location: loc}

	records, err := recordstore.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	snapshots := recoveryoutadapter.NewFileSnapshotStore(recoveryoutadapter.FileSnapshotStoreConfig{
		Pools: map[recoverydomain.Pool]recoveryoutadapter.PoolConfig{
			recoverydomain.PoolShortTerm: {Dir: cfg.ShortTermDir, Cap: cfg.ShortTermCap},
			recoverydomain.PoolLongTerm:  {Dir: cfg.LongTermDir, Cap: cfg.LongTermCap},
			recoverydomain.PoolRedo:      {Dir: cfg.RedoDir, Cap: cfg.RedoCap},
		},
		JournalPath: cfg.JournalPath,
	}, records, clk, logger)
	gateway := recoveryservice.NewGateway(snapshots, recoveryoutadapter.NewSQLiteDayActivity(records), clk, logger)

	sessionUC := sessionusecase.NewInteractor(sessionservice.NewSessionService(
		clk,
		sessionoutadapter.NewSQLiteLogStore(records, loc),
		gateway,
		logger,
	))
	plannerUC := plannerusecase.NewInteractor(plannerservice.NewPlannerService(
		clk,
		id.UUID{},
		planneroutadapter.NewSQLiteGoalStore(records, loc),
		planneroutadapter.NewSQLiteSummaryStore(records),
		gateway,
		logger,
	))
	recoveryUC := recoveryusecase.NewInteractor(recoveryservice.NewRecoveryService(snapshots, logger,
		recoveryservice.SharedWith(gateway),
		recoveryservice.WithRebuilder(recoveryoutadapter.NewSQLiteRebuilder(records)),
	))

	logger.Debug("record store ready", "path", cfg.DBPath)
	return &App{
		Session:     sessionUC,
		Planner:     plannerUC,
		Recovery:    recoveryUC,
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		PlannerCLI:  plannerinadapter.NewCLIHandler(plannerUC),
		RecoveryCLI: recoveryinadapter.NewCLIHandler(recoveryUC),
		Dispatcher:  dispatch.New(sessionUC, plannerUC, recoveryUC, logger),
		Clock:       clk,
		Logger:      logger,
		records:     records,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.records == nil {
		return nil
	}
	return a.records.Close()
}

// WriteMetrics dumps the default registry in the node-exporter textfile format.
func WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Session, app.Planner, app.Recovery, app.Clock)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
