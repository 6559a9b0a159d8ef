// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package availrp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
)

// OverlappingShipment returns the id of the earliest non-cancelled and
// non-deleted shipment of the kind resource which overlaps w, or nil.
func OverlappingShipment[Q postgres.Queryer](
	ctx context.Context, q Q, kind model.ResourceKind, id uuid.UUID,
	w model.Window,
) (*uuid.UUID, error) {
	var col string
	switch kind {
	case model.ResourceDriver:
		col = "driver_id"
	case model.ResourceVehicle:
		col = "vehicle_id"
	default:
		return nil, fmt.Errorf("invalid resource kind: %d", int(kind))
	}
	var ids []uuid.UUID
	err := q.GORM(ctx).Table("shipments").Select("id").Where(
		col+"=? AND status<>? AND deleted_at IS NULL", id,
		model.ShipmentCancelled.String(),
	).Where(
		"planned_pickup<=? AND planned_delivery>=?", w.End, w.Start,
	).Order("planned_pickup").Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("querying overlapping shipments: %w", err)
	}
	return first(ids), nil
}

// OverlappingMaintenance returns the id of the earliest maintenance
// window of the vehicle which overlaps w, or nil. A window without an
// end overlaps everything after its start.
func OverlappingMaintenance[Q postgres.Queryer](
	ctx context.Context, q Q, vehicleID uuid.UUID, w model.Window,
) (*uuid.UUID, error) {
	var ids []uuid.UUID
	err := q.GORM(ctx).Table("maintenance_windows").Select("id").Where(
		"vehicle_id=? AND starts_at<=?", vehicleID, w.End,
	).Where(
		"(ends_at IS NULL OR ends_at>=?)", w.Start,
	).Order("starts_at").Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("querying overlapping maintenance: %w", err)
	}
	return first(ids), nil
}

func first(ids []uuid.UUID) *uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	return &ids[0]
}
