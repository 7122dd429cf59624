// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging constructs the application logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// ParseLevel converts a config log level string to a slog.Level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch s {
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

// New returns a logger writing to stdout: human-readable text in
// development, JSON elsewhere.
func New(level, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, env)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(w io.Writer, level, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
