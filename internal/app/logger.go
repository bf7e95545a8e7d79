package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

// NewLogger builds a *slog.Logger writing to w and sets it as the slog
// default.
//
// Format "json" produces JSON lines; anything else produces text.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
func NewLogger(cfg model.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler).With(slog.String("service", "notify-center"))
	slog.SetDefault(logger)
	return logger
}

// NewFileLogger logs to the rotating file named in cfg. The TUI owns the
// terminal, so it never logs to stdout or stderr. With no file configured
// logs are discarded.
func NewFileLogger(cfg model.LogConfig) (*slog.Logger, io.Closer) {
	if cfg.File == "" {
		return NewLogger(cfg, io.Discard), io.NopCloser(nil)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return NewLogger(cfg, io.Discard), io.NopCloser(nil)
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    max(cfg.MaxSizeMB, 1),
		MaxBackups: cfg.MaxBackups,
	}
	return NewLogger(cfg, w), w
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
