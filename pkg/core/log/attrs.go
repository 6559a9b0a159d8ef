// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Valuer returns an Attr for the given slog.LogValuer value.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err returns an Attr for the given error value.
// The error value is resolved as a string by its Error() method.
// If error value is nil, the constant "no-error" value will be used.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// UUID returns an Attr for the given entity id.
func UUID(key string, id uuid.UUID) slog.Attr {
	return slog.String(key, id.String())
}

// UUIDs returns an Attr holding the string forms of the given ids.
func UUIDs(key string, ids []uuid.UUID) slog.Attr {
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = id.String()
	}
	return slog.Any(key, ss)
}

// Decimal returns an Attr for a monetary or quantity value.
func Decimal(key string, d decimal.Decimal) slog.Attr {
	return slog.String(key, d.String())
}

// Stringer returns an Attr for the String() result of value.
// It is suitable for the status enums.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Window returns a group Attr for the [start, end] time interval.
func Window(key string, start, end time.Time) slog.Attr {
	return slog.Group(key, slog.Time("start", start), slog.Time("end", end))
}
