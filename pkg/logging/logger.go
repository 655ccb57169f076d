// Package logging provides structured component loggers for deckshot.
// Every logger carries the run ID and a component name, writes
// human-readable output to stderr and, when a log directory is
// configured, JSON lines to a size-rotated file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	runID     string
	runIDOnce sync.Once

	mu       sync.Mutex
	fileSink io.Writer
	level    = zerolog.InfoLevel
)

// RunID returns the identifier shared by all loggers of this process.
func RunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// Configure sets the global log level and, when dir is non-empty, a
// rotating file sink under dir. Safe to call before any New.
func Configure(levelName, dir string) error {
	mu.Lock()
	defer mu.Unlock()

	lv, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return err
	}
	level = lv

	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
		fileSink = &lumberjack.Logger{
			Filename:   filepath.Join(dir, "deckshot.log"),
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
		}
	}
	return nil
}

// New returns a logger tagged with the given component name.
func New(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	var w io.Writer = console
	if fileSink != nil {
		w = zerolog.MultiLevelWriter(console, fileSink)
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("component", component).
		Str("run", RunID()).
		Logger()
}

// Nop returns a disabled logger, used as the default in constructors
// so that callers are never required to pass one.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
