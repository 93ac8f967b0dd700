package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns the process logger. Unknown levels fall back to info.
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "studylog",
		Level:  lvl,
		Output: out,
	})
}

// OrNull keeps constructors usable with a nil logger.
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
