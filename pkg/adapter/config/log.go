// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log contains the structured logging settings.
type Log struct {
	Level  string // debug, info (default), warn, or error
	Format string // json (default) or text

	level slog.Level
}

// ValidateAndNormalize parses the level and checks the format.
func (l *Log) ValidateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	if err := l.level.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	l.Format = strings.ToLower(l.Format)
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %q", l.Format)
	}
	return nil
}

// NewHandler creates a slog handler which writes into w.
func (l Log) NewHandler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true, Level: l.level}
	if l.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Install makes a handler writing into w the default slog handler.
func (l Log) Install(w io.Writer) {
	slog.SetDefault(slog.New(l.NewHandler(w)))
}
