package bootstrap_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studylog/internal/bootstrap"
	plannerdto "studylog/internal/modules/planner/dto"
	sessiondto "studylog/internal/modules/session/dto"
	"studylog/internal/platform/config"
)

func TestNewWiresSnapshotsAroundMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)

	app, err := bootstrap.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, app.Close()) }()

	_, err = app.SessionCLI.Start(ctx, "Go", "interfaces", nil, nil)
	require.NoError(t, err)

	shortTerm, err := app.RecoveryCLI.Snapshots(ctx, "short_term")
	require.NoError(t, err)
	require.Len(t, shortTerm, 1)
	longTerm, err := app.RecoveryCLI.Snapshots(ctx, "long_term")
	require.NoError(t, err)
	require.Len(t, longTerm, 1)

	journal, err := os.ReadFile(cfg.JournalPath)
	require.NoError(t, err)
	assert.Contains(t, string(journal), "Before start session.")
	assert.FileExists(t, cfg.DBPath)
}

func TestNewHonoursConfigFile(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("retention:\n  short_term: 2\n"), 0o644))
	cfg, err := config.New(home)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.ShortTermCap)

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, app.Close()) }()

	for i := 0; i < 4; i++ {
		_, err := app.RecoveryCLI.Backup(ctx, "short_term", "manual")
		require.NoError(t, err)
	}
	snaps, err := app.RecoveryCLI.Snapshots(ctx, "short_term")
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestDefaultShortTermPoolKeepsNewestHundred(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 100, cfg.ShortTermCap)

	app, err := bootstrap.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, app.Close()) }()

	for i := 0; i < 105; i++ {
		_, err := app.Planner.AddGoal(ctx, plannerdto.AddGoalInput{Task: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
	}
	snaps, err := app.RecoveryCLI.Snapshots(ctx, "short_term")
	require.NoError(t, err)
	assert.Len(t, snaps, 100)

	plan, err := app.Planner.Day(ctx, "")
	require.NoError(t, err)
	assert.Len(t, plan.Goals, 105)
}

func TestConcurrentUndosAreSerialized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	app, err := bootstrap.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, app.Close()) }()

	_, err = app.Session.Start(ctx, sessiondto.StartInput{Subject: "Go", Content: "mutexes"})
	require.NoError(t, err)
	_, err = app.Session.Break(ctx, sessiondto.BreakInput{})
	require.NoError(t, err)
	_, err = app.Session.Resume(ctx, sessiondto.ResumeInput{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.Recovery.Undo(ctx)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	shortTerm, err := app.RecoveryCLI.Snapshots(ctx, "short_term")
	require.NoError(t, err)
	assert.Len(t, shortTerm, 1)
	redo, err := app.RecoveryCLI.Snapshots(ctx, "redo")
	require.NoError(t, err)
	assert.Len(t, redo, 2)
	active, err := app.Session.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "active", active.State)
}

func TestWriteMetrics(t *testing.T) {
	t.Parallel()
	require.NoError(t, bootstrap.WriteMetrics(""))

	path := filepath.Join(t.TempDir(), "studylog.prom")
	require.NoError(t, bootstrap.WriteMetrics(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "go_goroutines"), "default registry exports runtime metrics")
}
