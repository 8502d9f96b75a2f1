package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Log owns the process logger: a JSON file for the full record plus an
// in-memory feed the activity view renders.
type Log struct {
	Logger *slog.Logger
	Feed   *Feed

	file *os.File
}

// Open creates the log file at path (parent directories included) and wires
// a logger that fans every record out to the file and the feed. level is one
// of debug, info, warn, error; anything else falls back to info.
func Open(path, level string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	lvl := ParseLevel(level)
	feed := NewFeed(feedCapacity)
	logger := slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}),
		feed.handler(lvl),
	))
	return &Log{Logger: logger, Feed: feed, file: f}, nil
}

// Close flushes and closes the log file. The logger must not be used after.
func (l *Log) Close() error {
	return l.file.Close()
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
