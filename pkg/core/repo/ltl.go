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

// Consolidations is the repository of the LTL consolidation voyages.
type Consolidations interface {
	Conn(Conn) ConsolidationsConnQueryer
	Tx(Tx) ConsolidationsTxQueryer
}

type ConsolidationsConnQueryer interface {
	ConsolidationsQueryer
}

type ConsolidationsTxQueryer interface {
	ConsolidationsQueryer

	// Create inserts l without members. A duplicate voyage code
	// causes a Conflict error.
	Create(ctx context.Context, l *model.LtlShipment) error

	// GetForUpdate is like Get, but locks the voyage row, so
	// membership changes of one voyage are serialized.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LtlShipment, error)

	// Members reloads the current members of the voyage with their
	// request cargo, as needed for the aggregates recomputation.
	Members(ctx context.Context, id uuid.UUID) ([]model.Member, error)

	// SaveAggregates stores the consolidated weight and volume.
	SaveAggregates(ctx context.Context, id uuid.UUID, l model.Load) error

	// UpdateStatus sets the voyage status.
	UpdateStatus(ctx context.Context, id uuid.UUID, s model.LtlStatus) error
}

type ConsolidationsQueryer interface {
	// Get returns the voyage with its member ids.
	Get(ctx context.Context, id uuid.UUID) (*model.LtlShipment, error)
}
