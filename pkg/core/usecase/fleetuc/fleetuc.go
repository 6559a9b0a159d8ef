// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fleetuc contains the drivers and vehicles registration use
// cases. New resources start available. Their availability flags are
// changed afterwards only by the dispatch use cases.
package fleetuc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/availuc"
)

// farFuture closes an open ended maintenance window for the overlap
// query against planned shipments.
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// UseCase represents the fleet use cases.
type UseCase struct {
	pool    repo.Pool
	fleetrp repo.Fleet
	avail   *availuc.UseCase
}

// New instantiates a fleet use case.
func New(p repo.Pool, f repo.Fleet, avail *availuc.UseCase) *UseCase {
	return &UseCase{pool: p, fleetrp: f, avail: avail}
}

// RegisterDriver stores d as an available driver.
func (uc *UseCase) RegisterDriver(
	ctx context.Context, d *model.Driver,
) (*model.Driver, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	if d.Name == "" || d.LicenseNumber == "" {
		return nil, cerr.Validation(
			errors.New("driver name and license number are required"),
		)
	}
	d.ID = uuid.New()
	d.Available = true
	d.Status = model.AvailabilityLabel(true)
	err := uc.inTx(ctx, func(ctx context.Context, q repo.FleetTxQueryer) error {
		return q.CreateDriver(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "driver is registered", log.UUID("driver", d.ID))
	return d, nil
}

// RegisterVehicle stores v as an available vehicle. Its payload and
// volume capacities must be positive.
func (uc *UseCase) RegisterVehicle(
	ctx context.Context, v *model.Vehicle,
) (*model.Vehicle, error) {
	v.PlateNumber = strings.TrimSpace(v.PlateNumber)
	switch {
	case v.PlateNumber == "":
		return nil, cerr.Validation(errors.New("plate number is required"))
	case !v.PayloadKg.IsPositive(), !v.VolumeM3.IsPositive():
		return nil, cerr.Validation(
			errors.New("payload and volume capacities must be positive"),
		)
	}
	v.ID = uuid.New()
	v.Available = true
	v.Status = model.AvailabilityLabel(true)
	v.Maintenance = nil
	err := uc.inTx(ctx, func(ctx context.Context, q repo.FleetTxQueryer) error {
		return q.CreateVehicle(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "vehicle is registered", log.UUID("vehicle", v.ID))
	return v, nil
}

// GetDriver returns the id driver.
func (uc *UseCase) GetDriver(
	ctx context.Context, id uuid.UUID,
) (d *model.Driver, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		d, err = uc.fleetrp.Conn(c).GetDriver(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetVehicle returns the id vehicle with its maintenance windows.
func (uc *UseCase) GetVehicle(
	ctx context.Context, id uuid.UUID,
) (v *model.Vehicle, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		v, err = uc.fleetrp.Conn(c).GetVehicle(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ScheduleMaintenance adds a maintenance window to the vehicleID
// vehicle. A nil end means that the end is not known yet. The window
// may not overlap a planned shipment of that vehicle.
func (uc *UseCase) ScheduleMaintenance(
	ctx context.Context, vehicleID uuid.UUID, w model.OpenWindow,
	note string,
) (*model.MaintenanceWindow, error) {
	if err := w.Validate(); err != nil {
		return nil, cerr.Validation(fmt.Errorf("maintenance window: %w", err))
	}
	mw := &model.MaintenanceWindow{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		Window:    w,
		Note:      strings.TrimSpace(note),
	}
	closed := model.Window{Start: w.Start, End: farFuture}
	if w.End != nil {
		closed.End = *w.End
	}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.fleetrp.Tx(tx)
			if _, err := q.LockVehicle(ctx, vehicleID); err != nil {
				return fmt.Errorf("loading vehicle: %w", err)
			}
			err := uc.avail.EnsureFree(
				ctx, tx, model.ResourceVehicle, vehicleID, closed,
			)
			if err != nil {
				return err
			}
			return q.AddMaintenance(ctx, mw)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "maintenance is scheduled",
		log.UUID("vehicle", vehicleID),
		log.UUID("maintenance", mw.ID),
	)
	return mw, nil
}

func (uc *UseCase) inTx(
	ctx context.Context,
	f func(ctx context.Context, q repo.FleetTxQueryer) error,
) error {
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return f(ctx, uc.fleetrp.Tx(tx))
		})
	})
}
