package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultShortTermCap = 100
	DefaultLongTermCap  = 30
	DefaultRedoCap      = 10

	fileName = "config.yaml"
)

type Config struct {
	Home         string
	DBPath       string
	ShortTermDir string
	LongTermDir  string
	RedoDir      string
	JournalPath  string

	ShortTermCap int
	LongTermCap  int
	RedoCap      int

	TimeZone string
	LogLevel string
}

// fileConfig mirrors the optional <home>/config.yaml.
type fileConfig struct {
	TimeZone  string `yaml:"timezone"`
	LogLevel  string `yaml:"log_level"`
	Retention struct {
		ShortTerm int `yaml:"short_term"`
		LongTerm  int `yaml:"long_term"`
		Redo      int `yaml:"redo"`
	} `yaml:"retention"`
}

func New(home string) (Config, error) {
	if strings.TrimSpace(home) == "" {
		return Config{}, fmt.Errorf("home path is required")
	}
	shortTermDir := filepath.Join(home, "db_backups")
	cfg := Config{
		Home:         home,
		DBPath:       filepath.Join(home, "study_log.db"),
		ShortTermDir: shortTermDir,
		LongTermDir:  filepath.Join(home, "db_long_term_backups"),
		RedoDir:      filepath.Join(home, "db_redo_backups"),
		JournalPath:  filepath.Join(shortTermDir, "backup_log.txt"),
		ShortTermCap: DefaultShortTermCap,
		LongTermCap:  DefaultLongTermCap,
		RedoCap:      DefaultRedoCap,
		LogLevel:     "info",
	}
	if err := cfg.loadFile(filepath.Join(home, fileName)); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	file := fileConfig{}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if file.TimeZone != "" {
		c.TimeZone = file.TimeZone
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	for _, item := range []struct {
		name  string
		value int
		dst   *int
	}{
		{"short_term", file.Retention.ShortTerm, &c.ShortTermCap},
		{"long_term", file.Retention.LongTerm, &c.LongTermCap},
		{"redo", file.Retention.Redo, &c.RedoCap},
	} {
		if item.value < 0 {
			return fmt.Errorf("retention.%s must be positive", item.name)
		}
		if item.value > 0 {
			*item.dst = item.value
		}
	}
	return nil
}

// Location resolves TimeZone; an empty value means the process local zone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// DefaultHome is $STUDYLOG_HOME or ~/.studylog.
func DefaultHome() string {
	if env := os.Getenv("STUDYLOG_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studylog"
	}
	return filepath.Join(home, ".studylog")
}
