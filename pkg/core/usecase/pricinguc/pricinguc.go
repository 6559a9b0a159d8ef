// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pricinguc contains the pricing use cases. The Price function
// is the deterministic pricing engine, while the UseCase type feeds it
// with the active tariff and resolved cargo, optionally persisting the
// resulting preliminary cost. It also manages the pricing catalog:
// tariffs, cargo types, and special handling requirements.
//
// At most one tariff is active. Activation is an explicit transition
// which deactivates the previously active tariff in the same
// transaction, so pricing never has to choose among several tariffs.
package pricinguc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// UseCase represents the pricing use cases.
type UseCase struct {
	pool       repo.Pool
	catalogrp  repo.Catalog
	requestsrp repo.Requests
}

// New instantiates a pricing use case.
func New(p repo.Pool, c repo.Catalog, r repo.Requests) *UseCase {
	return &UseCase{pool: p, catalogrp: c, requestsrp: r}
}

// Quote prices the r request draft without storing anything.
// The cargo items of r refer to their cargo type and requirements by
// id (only the ID fields are read); they are resolved from the catalog.
func (uc *UseCase) Quote(
	ctx context.Context, r *model.Request,
) (b *model.PriceBreakdown, err error) {
	if err = r.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		q := uc.catalogrp.Conn(c)
		if err := ResolveCargo(ctx, q, r.Cargo); err != nil {
			return err
		}
		t, err := q.ActiveTariff(ctx)
		if err != nil {
			return fmt.Errorf("finding active tariff: %w", err)
		}
		b = Price(t, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// PriceRequest prices the stored id request using the active tariff
// and persists the preliminary cost. Requests which are completed or
// rejected may not be priced again.
func (uc *UseCase) PriceRequest(
	ctx context.Context, id uuid.UUID,
) (b *model.PriceBreakdown, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			rq := uc.requestsrp.Tx(tx)
			r, err := rq.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("loading request: %w", err)
			}
			if r.Status.IsTerminal() {
				return cerr.Conflictf(
					"request %s is %s and may not be priced",
					id, r.Status,
				)
			}
			t, err := uc.catalogrp.Tx(tx).ActiveTariff(ctx)
			if err != nil {
				return fmt.Errorf("finding active tariff: %w", err)
			}
			b = Price(t, r)
			err = rq.SetPreliminaryCost(ctx, id, b.PreliminaryCost)
			if err != nil {
				return fmt.Errorf("storing preliminary cost: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(
		ctx, "request is priced",
		log.UUID("request", id),
		log.UUID("tariff", b.TariffID),
		log.Decimal("cost", b.PreliminaryCost),
	)
	return b, nil
}

// CreateTariff stores t as an inactive tariff.
func (uc *UseCase) CreateTariff(
	ctx context.Context, t *model.Tariff,
) (*model.Tariff, error) {
	if err := t.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	if t.Name == "" {
		return nil, cerr.Validation(errors.New("tariff name is empty"))
	}
	t.ID = uuid.New()
	t.Active = false
	t.CreatedAt = time.Now().UTC()
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.catalogrp.Tx(tx).CreateTariff(ctx, t)
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ActivateTariff makes id the single active tariff.
func (uc *UseCase) ActivateTariff(
	ctx context.Context, id uuid.UUID,
) (t *model.Tariff, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			t, err = uc.catalogrp.Tx(tx).ActivateTariff(ctx, id)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "tariff is activated", log.UUID("tariff", id))
	return t, nil
}

// ActiveTariff returns the active tariff or a NotFound error.
func (uc *UseCase) ActiveTariff(
	ctx context.Context,
) (t *model.Tariff, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		t, err = uc.catalogrp.Conn(c).ActiveTariff(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateCargoType stores a new cargo type.
func (uc *UseCase) CreateCargoType(
	ctx context.Context, ct *model.CargoType,
) (*model.CargoType, error) {
	if err := ct.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	ct.ID = uuid.New()
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.catalogrp.Tx(tx).CreateCargoType(ctx, ct)
		})
	})
	if err != nil {
		return nil, err
	}
	return ct, nil
}

// CreateRequirement stores a new special handling requirement.
func (uc *UseCase) CreateRequirement(
	ctx context.Context, rq *model.Requirement,
) (*model.Requirement, error) {
	if err := rq.Validate(); err != nil {
		return nil, cerr.Validation(err)
	}
	rq.ID = uuid.New()
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.catalogrp.Tx(tx).CreateRequirement(ctx, rq)
		})
	})
	if err != nil {
		return nil, err
	}
	return rq, nil
}

// ResolveCargo replaces the cargo type and requirements of each item
// of cargo by their catalog records, looking them up by their ID
// fields. A missing cargo type or requirement causes a NotFound error.
func ResolveCargo(
	ctx context.Context, q repo.CatalogQueryer, cargo []model.Cargo,
) error {
	if len(cargo) == 0 {
		return nil
	}
	typeIDs := make([]uuid.UUID, 0, len(cargo))
	var reqIDs []uuid.UUID
	for _, c := range cargo {
		typeIDs = append(typeIDs, c.Type.ID)
		for _, rq := range c.Requirements {
			reqIDs = append(reqIDs, rq.ID)
		}
	}
	types, err := q.CargoTypes(ctx, typeIDs)
	if err != nil {
		return fmt.Errorf("resolving cargo types: %w", err)
	}
	reqs, err := q.Requirements(ctx, reqIDs)
	if err != nil {
		return fmt.Errorf("resolving requirements: %w", err)
	}
	for i := range cargo {
		cargo[i].Type = types[cargo[i].Type.ID]
		for j := range cargo[i].Requirements {
			id := cargo[i].Requirements[j].ID
			cargo[i].Requirements[j] = reqs[id]
		}
	}
	return nil
}
