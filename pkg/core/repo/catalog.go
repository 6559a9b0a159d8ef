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

// Catalog is the repository of the pricing inputs: tariffs, cargo
// types, and special handling requirements.
type Catalog interface {
	Conn(Conn) CatalogConnQueryer
	Tx(Tx) CatalogTxQueryer
}

type CatalogConnQueryer interface {
	CatalogQueryer
}

type CatalogTxQueryer interface {
	CatalogQueryer

	CreateTariff(ctx context.Context, t *model.Tariff) error
	CreateCargoType(ctx context.Context, ct *model.CargoType) error
	CreateRequirement(ctx context.Context, rq *model.Requirement) error

	// ActivateTariff deactivates all tariffs but id and activates id.
	// A missing tariff causes a NotFound error.
	ActivateTariff(ctx context.Context, id uuid.UUID) (*model.Tariff, error)
}

type CatalogQueryer interface {
	// ActiveTariff returns the single active tariff or a NotFound
	// error when no tariff is active.
	ActiveTariff(ctx context.Context) (*model.Tariff, error)

	// CargoTypes resolves the given ids. A missing id causes a
	// NotFound error.
	CargoTypes(
		ctx context.Context, ids []uuid.UUID,
	) (map[uuid.UUID]model.CargoType, error)

	// Requirements resolves the given ids. A missing id causes a
	// NotFound error.
	Requirements(
		ctx context.Context, ids []uuid.UUID,
	) (map[uuid.UUID]model.Requirement, error)
}
