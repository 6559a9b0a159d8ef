// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package outboxrp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"gorm.io/gorm"
)

const (
	statusPending   = "pending"
	statusPublished = "published"
	statusFailed    = "failed"
)

type gEvent struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	EventType string
	EntityID  uuid.UUID `gorm:"type:uuid"`
	Payload   string    `gorm:"type:jsonb"`
	Status    string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ge *gEvent) TableName() string {
	return "outbox"
}

// Append stores events as pending rows.
func Append(ctx context.Context, tx *postgres.Tx, events ...*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now().UTC()
	ges := make([]gEvent, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling %s event: %w", e.Type, err)
		}
		ges = append(ges, gEvent{
			ID:        e.ID,
			EventType: string(e.Type),
			EntityID:  e.EntityID,
			Payload:   string(b),
			Status:    statusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	err := tx.GORM(ctx).Create(&ges).Error
	return postgres.Classify(err, "outbox events")
}

// Claim locks at most limit pending events, oldest first. Rows which
// are locked by other relays are skipped.
func Claim(ctx context.Context, tx *postgres.Tx, limit int) ([]model.Event, error) {
	var ges []gEvent
	err := tx.ForUpdateSkipLocked(ctx).Where(
		"status=?", statusPending,
	).Order("created_at, id").Limit(limit).Find(&ges).Error
	if err != nil {
		return nil, fmt.Errorf("claiming outbox events: %w", err)
	}
	events := make([]model.Event, 0, len(ges))
	var bad []uuid.UUID
	for _, ge := range ges {
		var e model.Event
		if err := json.Unmarshal([]byte(ge.Payload), &e); err != nil {
			log.Error(
				ctx, "outbox event is undecodable",
				log.UUID("event", ge.ID),
				slog.String("type", ge.EventType),
				log.Err("err", err),
			)
			bad = append(bad, ge.ID)
			continue
		}
		events = append(events, e)
	}
	if len(bad) > 0 {
		err = tx.GORM(ctx).Model(&gEvent{}).Where("id IN ?", bad).Updates(
			map[string]any{
				"status":     statusFailed,
				"updated_at": time.Now().UTC(),
			},
		).Error
		if err != nil {
			return nil, postgres.Classify(err, "outbox events")
		}
	}
	return events, nil
}

// MarkPublished marks ids as published.
func MarkPublished(ctx context.Context, tx *postgres.Tx, ids []uuid.UUID) error {
	err := tx.GORM(ctx).Model(&gEvent{}).Where("id IN ?", ids).Updates(
		map[string]any{
			"status":     statusPublished,
			"updated_at": time.Now().UTC(),
		},
	).Error
	return postgres.Classify(err, "outbox events")
}

// MarkFailed counts a failed publication attempt for ids.
func MarkFailed(ctx context.Context, tx *postgres.Tx, ids []uuid.UUID) error {
	err := tx.GORM(ctx).Model(&gEvent{}).Where("id IN ?", ids).Updates(
		map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now().UTC(),
		},
	).Error
	return postgres.Classify(err, "outbox events")
}
