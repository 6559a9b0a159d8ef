// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

// Requests is the transport requests repository.
type Requests interface {
	Conn(Conn) RequestsConnQueryer
	Tx(Tx) RequestsTxQueryer
}

type RequestsConnQueryer interface {
	RequestsQueryer
}

type RequestsTxQueryer interface {
	RequestsQueryer

	// Create inserts r and its cargo items. Ids, statuses, and
	// timestamps must be filled by the caller.
	Create(ctx context.Context, r *model.Request) error

	// GetForUpdate is like Get, but locks the request row until the
	// end of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error)

	// UpdateStatus sets the request status.
	UpdateStatus(
		ctx context.Context, id uuid.UUID, s model.RequestStatus,
	) error

	// Complete moves the request into the completed status, recording
	// its final cost (which may be nil).
	Complete(
		ctx context.Context, id uuid.UUID, finalCost *decimal.Decimal,
	) error

	// SetPreliminaryCost stores the computed price of the request.
	SetPreliminaryCost(
		ctx context.Context, id uuid.UUID, cost decimal.Decimal,
	) error
}

type RequestsQueryer interface {
	// Get returns the id request with its cargo items, cargo types,
	// and requirements. A missing request causes a NotFound error.
	Get(ctx context.Context, id uuid.UUID) (*model.Request, error)
}
