// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsNameTheirCaller(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		AddSource: true, Level: slog.LevelInfo,
	})))
	defer slog.SetDefault(prev)

	ctx := context.Background()
	id := uuid.New()
	log.Debug(ctx, "relay round", log.UUID("shipment", id))
	assert.Zero(t, buf.Len(), "debug records are filtered")

	log.Warn(ctx, "allocation is refused", log.UUID("shipment", id))
	var rec struct {
		Level    string `json:"level"`
		Msg      string `json:"msg"`
		Shipment string `json:"shipment"`
		Source   struct {
			File string `json:"file"`
		} `json:"source"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec.Level)
	assert.Equal(t, "allocation is refused", rec.Msg)
	assert.Equal(t, id.String(), rec.Shipment)
	assert.Equal(t, "log_test.go", filepath.Base(rec.Source.File))
}
