package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"studylog/internal/modules/recovery/domain"
	recoveryout "studylog/internal/modules/recovery/port/out"
	"studylog/internal/platform/clock"
	apperrors "studylog/internal/platform/errors"
	"studylog/internal/platform/logging"
)

// LiveFile is the record store as seen by the snapshot store: a single file
// that can be read consistently and replaced wholesale.
type LiveFile interface {
	Read(fn func(path string) error) error
	Replace(ctx context.Context, fn func(path string) error) error
}

type PoolConfig struct {
	Dir string
	Cap int
}

type FileSnapshotStoreConfig struct {
	Pools       map[domain.Pool]PoolConfig
	JournalPath string
}

type FileSnapshotStore struct {
	live        LiveFile
	pools       map[domain.Pool]PoolConfig
	journalPath string
	clock       clock.Clock
	logger      hclog.Logger
	mu          sync.Mutex
}

func NewFileSnapshotStore(cfg FileSnapshotStoreConfig, live LiveFile, clk clock.Clock, logger hclog.Logger) recoveryout.SnapshotStore {
	return &FileSnapshotStore{
		live:        live,
		pools:       cfg.Pools,
		journalPath: cfg.JournalPath,
		clock:       clk,
		logger:      logging.OrNull(logger).Named("snapshots"),
	}
}

func (s *FileSnapshotStore) Snapshot(_ context.Context, pool domain.Pool, description string) (domain.SnapshotRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.pool(pool)
	if err != nil {
		return domain.SnapshotRef{}, err
	}
	ref, err := s.write(pool, cfg, description)
	if err != nil {
		snapshotsTotal.WithLabelValues(string(pool), "error").Inc()
		s.logger.Error("snapshot failed", "pool", pool, "description", description, "error", err)
		return domain.SnapshotRef{}, fmt.Errorf("%w: snapshot %s: %w", apperrors.ErrStorage, pool, err)
	}
	snapshotsTotal.WithLabelValues(string(pool), "ok").Inc()
	s.logger.Info("snapshot written", "pool", pool, "name", ref.Name, "description", description)
	return ref, nil
}

func (s *FileSnapshotStore) write(pool domain.Pool, cfg PoolConfig, description string) (domain.SnapshotRef, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return domain.SnapshotRef{}, fmt.Errorf("create pool dir: %w", err)
	}
	name, err := s.reserveName(cfg.Dir)
	if err != nil {
		return domain.SnapshotRef{}, err
	}
	path := filepath.Join(cfg.Dir, name)
	if err := s.live.Read(func(livePath string) error { return copyFile(livePath, path) }); err != nil {
		return domain.SnapshotRef{}, err
	}
	if err := s.appendJournal(name, description); err != nil {
		return domain.SnapshotRef{}, err
	}
	if err := s.evict(pool, cfg); err != nil {
		return domain.SnapshotRef{}, err
	}
	return s.ref(pool, path)
}

// reserveName bumps the timestamp by a microsecond until the name is free.
func (s *FileSnapshotStore) reserveName(dir string) (string, error) {
	t := s.clock.Now()
	for i := 0; i < 1000; i++ {
		name := domain.SnapshotName(t)
		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat snapshot name: %w", err)
		}
		t = t.Add(time.Microsecond)
	}
	return "", fmt.Errorf("no free snapshot name in %s", dir)
}

func (s *FileSnapshotStore) evict(pool domain.Pool, cfg PoolConfig) error {
	if cfg.Cap <= 0 {
		return nil
	}
	refs, err := s.list(pool, cfg)
	if err != nil {
		return err
	}
	for len(refs) > cfg.Cap {
		oldest := refs[0]
		if err := os.Remove(oldest.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("evict %s: %w", oldest.Name, err)
		}
		evictionsTotal.WithLabelValues(string(pool)).Inc()
		s.logger.Debug("snapshot evicted", "pool", pool, "name", oldest.Name)
		refs = refs[1:]
	}
	return nil
}

func (s *FileSnapshotStore) Latest(_ context.Context, pool domain.Pool) (domain.SnapshotRef, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.pool(pool)
	if err != nil {
		return domain.SnapshotRef{}, false, err
	}
	refs, err := s.list(pool, cfg)
	if err != nil {
		return domain.SnapshotRef{}, false, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	if len(refs) == 0 {
		return domain.SnapshotRef{}, false, nil
	}
	return refs[len(refs)-1], true, nil
}

func (s *FileSnapshotStore) List(_ context.Context, pool domain.Pool) ([]domain.SnapshotRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.pool(pool)
	if err != nil {
		return nil, err
	}
	refs, err := s.list(pool, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	return refs, nil
}

func (s *FileSnapshotStore) list(pool domain.Pool, cfg PoolConfig) ([]domain.SnapshotRef, error) {
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.SnapshotRef{}, nil
		}
		return nil, fmt.Errorf("read pool dir: %w", err)
	}
	refs := make([]domain.SnapshotRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsSnapshotName(entry.Name()) {
			continue
		}
		ref, err := s.ref(pool, filepath.Join(cfg.Dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return domain.Older(refs[i], refs[j]) })
	return refs, nil
}

func (s *FileSnapshotStore) ref(pool domain.Pool, path string) (domain.SnapshotRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.SnapshotRef{}, fmt.Errorf("stat snapshot: %w", err)
	}
	name := filepath.Base(path)
	takenAt, err := domain.ParseSnapshotName(name, s.clock.Now().Location())
	if err != nil {
		takenAt = info.ModTime()
	}
	return domain.SnapshotRef{
		Pool:    pool,
		Name:    name,
		Path:    path,
		TakenAt: takenAt,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}

func (s *FileSnapshotStore) Restore(ctx context.Context, ref domain.SnapshotRef, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(ref.Path); err != nil {
		restoresTotal.WithLabelValues("error").Inc()
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("snapshot %s: %w", ref.Path, apperrors.ErrNotFound)
		}
		return fmt.Errorf("%w: stat snapshot: %w", apperrors.ErrStorage, err)
	}
	err := s.live.Replace(ctx, func(livePath string) error { return copyFile(ref.Path, livePath) })
	if err != nil {
		restoresTotal.WithLabelValues("error").Inc()
		s.logger.Error("restore failed", "snapshot", ref.Path, "error", err)
		return fmt.Errorf("%w: restore %s: %w", apperrors.ErrStorage, filepath.Base(ref.Path), err)
	}
	restoresTotal.WithLabelValues("ok").Inc()
	if err := s.appendJournal(filepath.Base(ref.Path), description); err != nil {
		// The record store already holds the restored state; only the audit
		// line is missing.
		s.logger.Warn("journal append after restore failed", "error", err)
	}
	s.logger.Info("record store restored", "snapshot", ref.Path, "description", description)
	return nil
}

func (s *FileSnapshotStore) Remove(_ context.Context, ref domain.SnapshotRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(ref.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("snapshot %s: %w", ref.Path, apperrors.ErrNotFound)
		}
		return fmt.Errorf("%w: remove snapshot: %w", apperrors.ErrStorage, err)
	}
	return nil
}

func (s *FileSnapshotStore) Resolve(_ context.Context, path string) (domain.SnapshotRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.SnapshotRef{}, fmt.Errorf("resolve %s: %w", path, apperrors.ErrInvalidInput)
	}
	var pool domain.Pool
	for candidate, cfg := range s.pools {
		dir, err := filepath.Abs(cfg.Dir)
		if err == nil && filepath.Dir(abs) == dir {
			pool = candidate
		}
	}
	ref, err := s.ref(pool, abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.SnapshotRef{}, fmt.Errorf("snapshot %s: %w", path, apperrors.ErrNotFound)
		}
		return domain.SnapshotRef{}, fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	return ref, nil
}

func (s *FileSnapshotStore) pool(pool domain.Pool) (PoolConfig, error) {
	cfg, ok := s.pools[pool]
	if !ok || cfg.Dir == "" {
		return PoolConfig{}, fmt.Errorf("snapshot pool %q is not configured: %w", pool, apperrors.ErrInvalidInput)
	}
	return cfg, nil
}

// appendJournal records one "<file>: <description>" line.
func (s *FileSnapshotStore) appendJournal(name, description string) error {
	if s.journalPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.journalPath), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	file, err := os.OpenFile(s.journalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()
	if _, err := fmt.Fprintf(file, "%s: %s\n", name, description); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// copyFile writes dst through a temp file, fsync and rename so a reader never
// observes a partial copy.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmpPath := dst + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		cleanup = false
		return fmt.Errorf("rename: %w", err)
	}
	cleanup = false
	return nil
}
