// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dispatchuc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Get returns the id shipment.
func (uc *UseCase) Get(
	ctx context.Context, id uuid.UUID,
) (s *model.Shipment, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		s, err = uc.repos.Shipments.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateStatus advances the id shipment to the next status.
// Entering in_transit records the actual pickup time and entering
// delivered records the actual delivery time. The first move into
// delivered or cancelled makes the driver and vehicle available again.
// The planned/consolidated statuses may only be changed through the
// consolidation membership use cases.
func (uc *UseCase) UpdateStatus(
	ctx context.Context, id uuid.UUID, next model.ShipmentStatus,
) (s *model.Shipment, err error) {
	if err = next.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	var prev model.ShipmentStatus
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			sq := uc.repos.Shipments.Tx(tx)
			s, err = sq.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("loading shipment: %w", err)
			}
			prev = s.Status
			if err := checkTransition(s, next); err != nil {
				return err
			}
			now := uc.now()
			switch next {
			case model.ShipmentInTransit:
				s.ActualPickup = &now
			case model.ShipmentDelivered:
				s.ActualDelivery = &now
			}
			s.Status = next
			s.UpdatedAt = now
			if err := sq.UpdateStatus(ctx, s); err != nil {
				return fmt.Errorf("updating shipment: %w", err)
			}
			events := []*model.Event{model.NewEvent(
				model.EventShipmentStatusChanged, s.ID,
				prev.String(), next.String(),
			)}
			if next.ReleasesResources() && !prev.ReleasesResources() {
				if err := uc.release(ctx, tx, s); err != nil {
					return fmt.Errorf("releasing resources: %w", err)
				}
				events = append(events, model.NewEvent(
					model.EventResourcesReleased, s.ID, "", "",
				).With("driver_id", s.DriverID.String()).
					With("vehicle_id", s.VehicleID.String()))
			}
			return uc.repos.Outbox.Tx(tx).Append(ctx, events...)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "shipment status is changed",
		log.UUID("shipment", id),
		log.Stringer("from", prev),
		log.Stringer("to", next),
	)
	return s, nil
}

func checkTransition(s *model.Shipment, next model.ShipmentStatus) error {
	te := &model.TransitionError{
		Entity: "shipment " + s.ID.String(),
		From:   s.Status.String(),
		To:     next.String(),
	}
	switch {
	case next == model.ShipmentConsolidated, next == model.ShipmentPlanned:
		return cerr.InvalidTransition(fmt.Errorf(
			"%w: use the consolidation membership instead", te,
		))
	case !s.Status.CanTransitionTo(next):
		return cerr.InvalidTransition(te)
	}
	return nil
}

// release flips the driver and vehicle of s back to available. It locks
// them in the same order as the allocation does.
func (uc *UseCase) release(
	ctx context.Context, tx repo.Tx, s *model.Shipment,
) error {
	fq := uc.repos.Fleet.Tx(tx)
	if _, err := fq.LockDriver(ctx, s.DriverID); err != nil {
		return fmt.Errorf("locking driver: %w", err)
	}
	if _, err := fq.LockVehicle(ctx, s.VehicleID); err != nil {
		return fmt.Errorf("locking vehicle: %w", err)
	}
	if err := fq.SetDriverAvailable(ctx, s.DriverID, true); err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	if err := fq.SetVehicleAvailable(ctx, s.VehicleID, true); err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}
	return nil
}

// Delete soft-deletes the id shipment. Only cancelled shipments and
// the shipments whose proof of delivery is received may be deleted.
func (uc *UseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			sq := uc.repos.Shipments.Tx(tx)
			s, err := sq.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("loading shipment: %w", err)
			}
			if !s.Status.IsTerminal() {
				return cerr.Conflictf(
					"shipment %s is %s and may not be deleted",
					id, s.Status,
				)
			}
			return sq.SoftDelete(ctx, id)
		})
	})
	if err != nil {
		return err
	}
	log.Info(ctx, "shipment is deleted", log.UUID("shipment", id))
	return nil
}
