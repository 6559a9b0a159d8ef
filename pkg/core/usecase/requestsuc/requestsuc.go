// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package requestsuc contains the transport request intake use cases.
// Requests are created in the new status with their cargo items and
// may be moved into processing or rejected by a dispatcher. Only the
// shipment allocation may complete a request.
package requestsuc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/pricinguc"
)

// UseCase represents the request intake use cases.
type UseCase struct {
	pool       repo.Pool
	requestsrp repo.Requests
	catalogrp  repo.Catalog
	outboxrp   repo.Outbox
}

// New instantiates a request intake use case.
func New(
	p repo.Pool, r repo.Requests, c repo.Catalog, o repo.Outbox,
) *UseCase {
	return &UseCase{pool: p, requestsrp: r, catalogrp: c, outboxrp: o}
}

// Create validates and stores r as a new request. The cargo items
// refer to their cargo type and requirements by id. Ids, status,
// costs, and timestamps of r are overwritten.
func (uc *UseCase) Create(
	ctx context.Context, r *model.Request,
) (*model.Request, error) {
	if err := r.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	now := time.Now().UTC()
	r.ID = uuid.New()
	r.Status = model.RequestNew
	r.PreliminaryCost, r.FinalCost = nil, nil
	r.CreatedAt, r.UpdatedAt = now, now
	for i := range r.Cargo {
		r.Cargo[i].ID = uuid.New()
	}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			err := pricinguc.ResolveCargo(ctx, uc.catalogrp.Tx(tx), r.Cargo)
			if err != nil {
				return err
			}
			return uc.requestsrp.Tx(tx).Create(ctx, r)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "request is created",
		log.UUID("request", r.ID),
		log.UUID("company", r.CompanyID),
		log.Window("window", r.PickupDate, r.DeliveryDate),
	)
	return r, nil
}

// Get returns the id request with its cargo.
func (uc *UseCase) Get(
	ctx context.Context, id uuid.UUID,
) (r *model.Request, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		r, err = uc.requestsrp.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateStatus moves the id request into the processing or rejected
// status. The completed status is refused because it is reserved for
// the shipment allocation.
func (uc *UseCase) UpdateStatus(
	ctx context.Context, id uuid.UUID, next model.RequestStatus,
) (r *model.Request, err error) {
	if err = next.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	var prev model.RequestStatus
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.requestsrp.Tx(tx)
			r, err = q.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("loading request: %w", err)
			}
			prev = r.Status
			te := &model.TransitionError{
				Entity: "request " + id.String(),
				From:   prev.String(),
				To:     next.String(),
			}
			switch {
			case next == model.RequestCompleted:
				return cerr.InvalidTransition(fmt.Errorf(
					"%w: requests are completed by allocation", te,
				))
			case !prev.CanTransitionTo(next):
				return cerr.InvalidTransition(te)
			}
			if err := q.UpdateStatus(ctx, id, next); err != nil {
				return fmt.Errorf("updating request: %w", err)
			}
			r.Status = next
			return uc.outboxrp.Tx(tx).Append(ctx, model.NewEvent(
				model.EventRequestStatusChanged, id,
				prev.String(), next.String(),
			))
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "request status is changed",
		log.UUID("request", id),
		log.Stringer("from", prev),
		log.Stringer("to", next),
	)
	return r, nil
}
