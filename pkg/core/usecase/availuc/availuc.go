// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package availuc contains the availability checker use case. A driver
// or vehicle is available during a time window if no non-cancelled
// shipment of it overlaps that window and, for vehicles, no maintenance
// window overlaps it either. Bounds are inclusive on both sides.
//
// An unavailable resource is reported as a Conflict error wrapping a
// *model.ConflictError which identifies the blocking record, not as a
// false return value.
package availuc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// UseCase represents the availability checker. It holds a database
// connection pool and the repositories which it needs in order to
// resolve resources and search for overlapping records.
type UseCase struct {
	pool    repo.Pool
	fleetrp repo.Fleet
	availrp repo.Availability
}

// New instantiates an availability checker use case.
func New(p repo.Pool, f repo.Fleet, a repo.Availability) *UseCase {
	return &UseCase{pool: p, fleetrp: f, availrp: a}
}

// Check verifies that the kind resource with the given id exists and
// is free during w. It returns nil if the resource is free, a NotFound
// error if the resource does not exist, a Validation error if w is
// inverted, and a Conflict error if some record blocks the resource.
//
// Check runs on an auto-committed connection, hence, its result is
// advisory. Allocations must use EnsureFree in their own transaction.
func (uc *UseCase) Check(
	ctx context.Context, kind model.ResourceKind, id uuid.UUID,
	w model.Window,
) error {
	if err := w.Validate(); err != nil {
		return cerr.Validation(err)
	}
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		fq := uc.fleetrp.Conn(c)
		var err error
		switch kind {
		case model.ResourceDriver:
			_, err = fq.GetDriver(ctx, id)
		case model.ResourceVehicle:
			_, err = fq.GetVehicle(ctx, id)
		default:
			return cerr.Validationf("invalid resource kind: %d", int(kind))
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", kind, err)
		}
		return ensureFree(ctx, uc.availrp.Conn(c), kind, id, w)
	})
}

// EnsureFree is like Check, but runs the overlap queries in the tx
// transaction, so they observe the same snapshot (and row locks) as
// the reservation which follows them. It does not verify that the
// resource exists; callers lock the resource row beforehand.
func (uc *UseCase) EnsureFree(
	ctx context.Context, tx repo.Tx,
	kind model.ResourceKind, id uuid.UUID, w model.Window,
) error {
	return ensureFree(ctx, uc.availrp.Tx(tx), kind, id, w)
}

func ensureFree(
	ctx context.Context, q repo.AvailabilityQueryer,
	kind model.ResourceKind, id uuid.UUID, w model.Window,
) error {
	sid, err := q.OverlappingShipment(ctx, kind, id, w)
	if err != nil {
		return fmt.Errorf("searching overlapping shipments: %w", err)
	}
	if sid != nil {
		return conflict(ctx, kind, id, model.BlockedByShipment, *sid, w)
	}
	if kind != model.ResourceVehicle {
		return nil
	}
	mid, err := q.OverlappingMaintenance(ctx, id, w)
	if err != nil {
		return fmt.Errorf("searching overlapping maintenance: %w", err)
	}
	if mid != nil {
		return conflict(ctx, kind, id, model.BlockedByMaintenance, *mid, w)
	}
	return nil
}

func conflict(
	ctx context.Context,
	kind model.ResourceKind, id uuid.UUID,
	blocker model.BlockerKind, blockerID uuid.UUID,
	w model.Window,
) error {
	log.Debug(
		ctx, "resource is busy",
		log.Stringer("kind", kind),
		log.UUID("id", id),
		log.UUID(string(blocker), blockerID),
		log.Window("window", w.Start, w.End),
	)
	return cerr.Conflict(&model.ConflictError{
		Resource:   kind,
		ResourceID: id,
		Blocker:    blocker,
		BlockerID:  blockerID,
		Window:     w,
	})
}
