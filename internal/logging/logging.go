// Package logging builds the zerolog loggers used across the pool.
//
// Console output goes through zerolog's console writer; file output, when
// enabled, goes through lumberjack rotation under the pool's logs directory.
// Components derive their own loggers with With().Str("component", ...).
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation limits for the file writer.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// Options controls logger construction.
type Options struct {
	// Level is the minimum level name: "debug", "info", "warn", "error".
	Level string

	// LogsDir enables rotated file output when non-empty.
	LogsDir string

	// Console forces console output even without a TTY (tests).
	Console io.Writer
}

// New builds the root logger. It returns the logger and a closer for the
// file writer (nil-safe to ignore when file logging is disabled).
func New(opts Options) (zerolog.Logger, io.Closer) {
	level := parseLevel(opts.Level)

	var writers []io.Writer
	console := opts.Console
	if console == nil {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			console = zerolog.ConsoleWriter{Out: os.Stderr}
		} else {
			console = os.Stderr
		}
	}
	writers = append(writers, console)

	var closer io.Closer
	if opts.LogsDir != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(opts.LogsDir, "taskpool.log"),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer
}

func parseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
