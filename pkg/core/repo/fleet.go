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

// Fleet is the drivers and vehicles repository.
type Fleet interface {
	Conn(Conn) FleetConnQueryer
	Tx(Tx) FleetTxQueryer
}

type FleetConnQueryer interface {
	FleetQueryer
}

type FleetTxQueryer interface {
	FleetQueryer

	CreateDriver(ctx context.Context, d *model.Driver) error
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	AddMaintenance(ctx context.Context, mw *model.MaintenanceWindow) error

	// LockDriver loads the driver row with a FOR UPDATE lock which
	// serializes concurrent allocations of the same driver.
	LockDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error)

	// LockVehicle loads the vehicle row with a FOR UPDATE lock.
	// The maintenance windows are not loaded.
	LockVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)

	// SetDriverAvailable updates the availability flag and its
	// mirroring status label.
	SetDriverAvailable(ctx context.Context, id uuid.UUID, available bool) error

	// SetVehicleAvailable updates the availability flag and its
	// mirroring status label.
	SetVehicleAvailable(ctx context.Context, id uuid.UUID, available bool) error
}

type FleetQueryer interface {
	GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error)

	// GetVehicle returns the vehicle with its maintenance windows.
	GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
}
