// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shipment is a Request fulfilled by one driver and one vehicle during
// the Planned window. It is created only by the allocation use case.
type Shipment struct {
	ID             uuid.UUID      `json:"id"`
	RequestID      uuid.UUID      `json:"request_id"`
	DriverID       uuid.UUID      `json:"driver_id"`
	VehicleID      uuid.UUID      `json:"vehicle_id"`
	LtlShipmentID  *uuid.UUID     `json:"ltl_shipment_id"`
	Planned        Window         `json:"planned"`
	ActualPickup   *time.Time     `json:"actual_pickup"`
	ActualDelivery *time.Time     `json:"actual_delivery"`
	Status         ShipmentStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// LtlShipment is a consolidation voyage. ConsolidatedWeightKg and
// ConsolidatedVolumeM3 are derived from the cargo of the current
// members and are recomputed after every membership change.
type LtlShipment struct {
	ID                   uuid.UUID       `json:"id"`
	VoyageCode           string          `json:"voyage_code"`
	Status               LtlStatus       `json:"status"`
	Departure            time.Time       `json:"departure"`
	Arrival              time.Time       `json:"arrival"`
	ConsolidatedWeightKg decimal.Decimal `json:"consolidated_weight_kg"`
	ConsolidatedVolumeM3 decimal.Decimal `json:"consolidated_volume_m3"`
	MemberIDs            []uuid.UUID     `json:"member_ids"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Member is a shipment together with the cargo of its request, as
// needed for the consolidation aggregates.
type Member struct {
	Shipment Shipment
	Cargo    []Cargo
}

// Consolidate computes the aggregate load of the given members from
// scratch: the sum of weight and volume over all cargo of all members.
func Consolidate(members []Member) Load {
	l := Load{}
	for _, m := range members {
		l = l.Add(m.Cargo...)
	}
	return l
}
