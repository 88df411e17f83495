// Package logging configures mnemo's component loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options controls where and how loud mnemo logs.
type Options struct {
	File   string // empty keeps the current output (stderr by default)
	Level  string // overridden by MNEMO_LOG_LEVEL
	Format string // "text" (default) or "json"
}

const levelEnv = "MNEMO_LOG_LEVEL"

var (
	root      = newRoot()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

func newRoot() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// NewLogger returns the logger for a component. Loggers are cached per
// component and share the root configuration, so Setup may run before or
// after they are created.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}
	logger := root.WithField("component", component)
	loggers[component] = logger
	return logger
}

// Setup applies opts to the root logger. The returned closer releases the log
// file, if one was opened.
func Setup(opts Options) (io.Closer, error) {
	levelStr := "info"
	if env := strings.TrimSpace(os.Getenv(levelEnv)); env != "" {
		levelStr = env
	} else if opts.Level != "" {
		levelStr = opts.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	root.SetLevel(level)

	switch opts.Format {
	case "json":
		root.SetFormatter(&logrus.JSONFormatter{})
	default:
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: opts.File != ""})
	}

	if strings.TrimSpace(opts.File) == "" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	root.SetOutput(file)
	return file, nil
}

// SetOutput redirects the root logger; used by tests and the CLI.
func SetOutput(w io.Writer) {
	root.SetOutput(w)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
