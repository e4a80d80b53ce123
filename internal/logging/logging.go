// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a text logger writing to w at level. The returned LevelVar
// can raise or lower the level later, e.g. after flags are parsed.
func New(w io.Writer, level string) (*slog.Logger, *slog.LevelVar) {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(level))

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), lvl
}

// Install makes a logger from New the slog default and returns its level.
func Install(w io.Writer, level string) *slog.LevelVar {
	logger, lvl := New(w, level)
	slog.SetDefault(logger)
	return lvl
}
