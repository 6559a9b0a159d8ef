// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dispatchuc contains the dispatch use cases:
//  1. Allocating a shipment, i.e., converting a request into a
//     shipment by reserving a driver and a vehicle for a time window,
//  2. Advancing the status of a shipment, which releases its driver
//     and vehicle when it is delivered or cancelled,
//  3. Reading and soft-deleting shipments.
//
// Allocation is one transaction. It locks the request, driver, and
// vehicle rows (in this order) before checking their availability,
// so two concurrent allocations of the same resource are serialized
// and the second one observes the reservation of the first one.
package dispatchuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/availuc"
	"github.com/shopspring/decimal"
)

// Repos groups the repositories which are needed by the dispatch
// use cases.
type Repos struct {
	Requests  repo.Requests
	Fleet     repo.Fleet
	Shipments repo.Shipments
	Outbox    repo.Outbox
}

// UseCase represents the dispatch use cases.
type UseCase struct {
	pool  repo.Pool
	repos Repos
	avail *availuc.UseCase

	capacityCheck *bool
	now           func() time.Time
}

// New instantiates a dispatch use case. The avail checker is used in
// the allocation transactions, so it must be backed by the same kind
// of database as the p pool.
func New(
	p repo.Pool, r Repos, avail *availuc.UseCase, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, repos: r, avail: avail}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.capacityCheck == nil {
		enabled := true
		uc.capacityCheck = &enabled
	}
	if uc.now == nil {
		uc.now = func() time.Time {
			return time.Now().UTC()
		}
	}
	return uc, nil
}

// AllocateParams are the inputs of an allocation.
// FinalCost is optional and defaults to the preliminary cost of the
// request (which may be nil too).
type AllocateParams struct {
	RequestID uuid.UUID
	DriverID  uuid.UUID
	VehicleID uuid.UUID
	Planned   model.Window
	FinalCost *decimal.Decimal
}

// Allocate converts a request into a planned shipment. In one
// transaction, it
//  1. locks the request which must exist, must not be linked to a
//     shipment, and must be new or processing,
//  2. locks the driver and vehicle which must exist and be available,
//  3. ensures that the request cargo fits the vehicle (if enabled),
//  4. ensures that no shipment (or maintenance) of the driver and
//     vehicle overlaps the planned window,
//  5. marks the driver and vehicle as unavailable,
//  6. completes the request, recording its final cost, and
//  7. creates the planned shipment and records the outbox events.
//
// Any failure rolls back all of these steps.
func (uc *UseCase) Allocate(
	ctx context.Context, p AllocateParams,
) (s *model.Shipment, err error) {
	if err = p.Planned.Validate(); err != nil {
		return nil, cerr.Validation(fmt.Errorf("planned window: %w", err))
	}
	if p.FinalCost != nil && p.FinalCost.IsNegative() {
		return nil, cerr.Validation(errors.New("final cost is negative"))
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			s, err = uc.allocate(ctx, tx, p)
			return err
		})
	})
	if err != nil {
		attrs := []slog.Attr{
			log.UUID("request", p.RequestID),
			log.UUID("driver", p.DriverID),
			log.UUID("vehicle", p.VehicleID),
			log.Err("err", err),
		}
		if cerr.Is(err, cerr.KindConflict) {
			log.Warn(ctx, "allocation is refused", attrs...)
		}
		return nil, err
	}
	log.Info(
		ctx, "shipment is allocated",
		log.UUID("shipment", s.ID),
		log.UUID("request", s.RequestID),
		log.UUID("driver", s.DriverID),
		log.UUID("vehicle", s.VehicleID),
		log.Window("planned", s.Planned.Start, s.Planned.End),
	)
	return s, nil
}

func (uc *UseCase) allocate(
	ctx context.Context, tx repo.Tx, p AllocateParams,
) (*model.Shipment, error) {
	rq := uc.repos.Requests.Tx(tx)
	r, err := rq.GetForUpdate(ctx, p.RequestID)
	if err != nil {
		return nil, fmt.Errorf("loading request: %w", err)
	}
	sq := uc.repos.Shipments.Tx(tx)
	linked, err := sq.ForRequest(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("finding linked shipment: %w", err)
	}
	if linked != nil {
		return nil, cerr.Conflictf(
			"request %s is already allocated to shipment %s",
			r.ID, *linked,
		)
	}
	if !r.Status.CanTransitionTo(model.RequestCompleted) {
		return nil, cerr.InvalidTransition(&model.TransitionError{
			Entity: "request " + r.ID.String(),
			From:   r.Status.String(),
			To:     model.RequestCompleted.String(),
		})
	}

	fq := uc.repos.Fleet.Tx(tx)
	d, err := fq.LockDriver(ctx, p.DriverID)
	if err != nil {
		return nil, fmt.Errorf("loading driver: %w", err)
	}
	v, err := fq.LockVehicle(ctx, p.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("loading vehicle: %w", err)
	}
	if !d.Available {
		return nil, flagConflict(model.ResourceDriver, d.ID, p.Planned)
	}
	if !v.Available {
		return nil, flagConflict(model.ResourceVehicle, v.ID, p.Planned)
	}
	if *uc.capacityCheck {
		if l := r.TotalLoad(); !v.Fits(l) {
			return nil, cerr.Conflictf(
				"cargo of request %s (%s kg, %s m3) exceeds "+
					"vehicle %s capacity (%s kg, %s m3)",
				r.ID, l.WeightKg, l.VolumeM3,
				v.ID, v.PayloadKg, v.VolumeM3,
			)
		}
	}
	err = uc.avail.EnsureFree(
		ctx, tx, model.ResourceDriver, d.ID, p.Planned,
	)
	if err != nil {
		return nil, fmt.Errorf("checking driver: %w", err)
	}
	err = uc.avail.EnsureFree(
		ctx, tx, model.ResourceVehicle, v.ID, p.Planned,
	)
	if err != nil {
		return nil, fmt.Errorf("checking vehicle: %w", err)
	}

	if err = fq.SetDriverAvailable(ctx, d.ID, false); err != nil {
		return nil, fmt.Errorf("reserving driver: %w", err)
	}
	if err = fq.SetVehicleAvailable(ctx, v.ID, false); err != nil {
		return nil, fmt.Errorf("reserving vehicle: %w", err)
	}
	cost := p.FinalCost
	if cost == nil {
		cost = r.PreliminaryCost
	}
	if err = rq.Complete(ctx, r.ID, cost); err != nil {
		return nil, fmt.Errorf("completing request: %w", err)
	}
	now := uc.now()
	s := &model.Shipment{
		ID:        uuid.New(),
		RequestID: r.ID,
		DriverID:  d.ID,
		VehicleID: v.ID,
		Planned:   p.Planned,
		Status:    model.ShipmentPlanned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = sq.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("creating shipment: %w", err)
	}
	allocated := model.NewEvent(
		model.EventShipmentAllocated, s.ID,
		"", model.ShipmentPlanned.String(),
	).With("request_id", r.ID.String()).
		With("driver_id", d.ID.String()).
		With("vehicle_id", v.ID.String())
	if cost != nil {
		allocated.With("final_cost", cost.StringFixed(2))
	}
	err = uc.repos.Outbox.Tx(tx).Append(
		ctx,
		model.NewEvent(
			model.EventRequestStatusChanged, r.ID,
			r.Status.String(), model.RequestCompleted.String(),
		),
		allocated,
	)
	if err != nil {
		return nil, fmt.Errorf("recording events: %w", err)
	}
	return s, nil
}

func flagConflict(
	kind model.ResourceKind, id uuid.UUID, w model.Window,
) error {
	return cerr.Conflict(&model.ConflictError{
		Resource:   kind,
		ResourceID: id,
		Blocker:    model.BlockedByFlag,
		BlockerID:  id,
		Window:     w,
	})
}
