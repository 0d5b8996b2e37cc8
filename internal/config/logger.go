package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the log file written inside the data dir by interactive modes.
const LogFileName = "cinegrid.log"

// ParseLevel maps a configured level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger configures the global logger to write JSON records to w
func SetupLogger(level string, w io.Writer) *slog.Logger {
	logLevel := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug, // Add source file/line in debug mode
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// LogFile returns a size-rotated log file in dataDir. The TUI and the bot
// log here so records do not interleave with the terminal UI.
func LogFile(dataDir string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dataDir, LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}
