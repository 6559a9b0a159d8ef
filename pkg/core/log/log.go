// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log is the structured logging facade of the freight use
// cases and adapters. Records go to the slog default logger, whose
// handler is installed by the fdweb root command from the log section
// of the configuration file (text or JSON, with a minimum level).
//
// Debug, Info, Warn, and Error take statically typed slog.Attr values
// instead of the interleaved key/value arguments of slog.Info, so the
// common attributes of this module (entity ids, planned windows, and
// decimal amounts, see attrs.go) do not allocate. The source location
// of a record is its caller in the use case, not this package.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Debug logs per-round details such as the outbox relay batch sizes.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs a committed state change, e.g., an allocated shipment.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs a refused or retried operation, e.g., a conflicting
// allocation or an event which could not be published.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs a failure which needs an operator, e.g., an undecodable
// outbox event.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

// emit must only be called by the exported functions above, since it
// skips exactly one frame of this package when finding the caller.
func emit(
	ctx context.Context, level slog.Level, msg string, attrs []slog.Attr,
) {
	h := slog.Default().Handler()
	if !h.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // Callers, emit, Debug/Info/Warn/Error
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = h.Handle(ctx, r)
}
