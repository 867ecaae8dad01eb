// Package logging configures structured logging.
//
// Usage:
//
//	logging.Setup("debug", "")                   // colored output on stderr
//	closer := logging.Setup("info", "app.log")   // JSON lines to a rotated file
//	defer closer.Close()
//
// The level falls back to the LOG_LEVEL environment variable, then INFO.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the default slog logger. With an empty file it logs colored
// text to stderr via tint; otherwise it writes JSON to a lumberjack-rotated
// file. The returned Closer releases the file.
func Setup(level, file string) io.Closer {
	lvl := ParseLevel(level)
	if file == "" {
		SetupWithLevel(lvl)
		return nopCloser{}
	}

	out := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: true,
	})))
	return out
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

// ParseLevel maps debug, info, warn and error onto slog levels. An empty
// string reads LOG_LEVEL; anything unknown is INFO.
func ParseLevel(level string) slog.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
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
