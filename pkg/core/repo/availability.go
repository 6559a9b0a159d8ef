// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/model"
)

// Availability is the repository of the overlap queries which decide
// if a driver or vehicle is free during a time window.
// Queries return the first blocker which they find, ordered by start
// time, or a nil pointer if the resource is free.
type Availability interface {
	Conn(Conn) AvailabilityQueryer
	Tx(Tx) AvailabilityQueryer
}

type AvailabilityQueryer interface {
	// OverlappingShipment finds a non-cancelled and non-deleted
	// shipment of the kind resource whose planned window overlaps w
	// under inclusive bounds.
	OverlappingShipment(
		ctx context.Context,
		kind model.ResourceKind, id uuid.UUID, w model.Window,
	) (*uuid.UUID, error)

	// OverlappingMaintenance finds a maintenance window of the
	// vehicle which overlaps w. A window without end overlaps every
	// w which ends at or after its start.
	OverlappingMaintenance(
		ctx context.Context, vehicleID uuid.UUID, w model.Window,
	) (*uuid.UUID, error)
}
