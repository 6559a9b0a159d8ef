// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"log/slog"
	"time"
)

// ErrInvertedWindow indicates a window which ends before it starts.
var ErrInvertedWindow = errors.New("window ends before it starts")

// Window is a closed time interval [Start, End]. Both bounds are
// inclusive, so two windows sharing only one instant do overlap.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate returns ErrInvertedWindow if w.End is before w.Start.
// A zero length window (Start == End) is acceptable.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return ErrInvertedWindow
	}
	return nil
}

// Overlaps reports whether w and o intersect under inclusive bounds,
// that is NOT (w.End < o.Start OR w.Start > o.End).
func (w Window) Overlaps(o Window) bool {
	return !(w.End.Before(o.Start) || w.Start.After(o.End))
}

// LogValue implements slog.LogValuer.
func (w Window) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Time("start", w.Start),
		slog.Time("end", w.End),
	)
}

// OpenWindow is a time interval with an optional end. A nil End means
// the interval never closes, e.g., a maintenance with unknown duration.
type OpenWindow struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Validate returns ErrInvertedWindow if o has an end before its start.
func (o OpenWindow) Validate() error {
	if o.End != nil && o.End.Before(o.Start) {
		return ErrInvertedWindow
	}
	return nil
}

// Overlaps reports whether o intersects the closed w window. An open
// ended o overlaps every window which ends at or after o.Start.
func (o OpenWindow) Overlaps(w Window) bool {
	if w.End.Before(o.Start) {
		return false
	}
	return o.End == nil || !w.Start.After(*o.End)
}
