// =============================================================================
// SO Automation - Logging
// =============================================================================
//
// Logs go to two places:
//   - stderr, human readable, at the configured level (debug with --verbose)
//   - an optional JSON log file, every level, appended across runs
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used by the processing packages.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}

// Options configure New.
type Options struct {
	// Level is the console level: "debug", "info", "warn" or "error".
	Level string

	// Verbose forces the console level to debug.
	Verbose bool

	// File is the JSON log file path. Empty disables file logging.
	File string
}

// New builds the CLI logger. The returned function flushes and closes the
// log file and must be called before exit.
func New(stderr io.Writer, opts Options) (*zap.SugaredLogger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{consoleCore(stderr, level)}
	closeFile := func() {}

	// Log to file
	if opts.File != "" {
		// The log file can be anywhere, so it does not go through afero.
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		sink, closeSink, err := zap.Open(opts.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, fileCore(sink))
		closeFile = closeSink
	}

	logger := zap.New(zapcore.NewTee(cores...))

	cleanup := func() {
		_ = logger.Sync()
		closeFile()
	}

	return logger.Sugar(), cleanup, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// consoleCore writes short human readable lines.
func consoleCore(w io.Writer, level zapcore.Level) zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "message",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		ConsoleSeparator: " ",
	})

	return zapcore.NewCore(encoder, zapcore.AddSync(w), level)
}

// fileCore writes every level as JSON.
func fileCore(sink zapcore.WriteSyncer) zapcore.Core {
	// Log time, level, msg
	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:     "time",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
		EncodeTime:  zapcore.ISO8601TimeEncoder,
	})

	return zapcore.NewCore(encoder, sink, zapcore.DebugLevel)
}
