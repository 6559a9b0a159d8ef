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

// Shipments is the repository of the allocated shipments.
// Soft-deleted shipments are invisible to all of its queries.
type Shipments interface {
	Conn(Conn) ShipmentsConnQueryer
	Tx(Tx) ShipmentsTxQueryer
}

type ShipmentsConnQueryer interface {
	ShipmentsQueryer
}

type ShipmentsTxQueryer interface {
	ShipmentsQueryer

	// Create inserts s. A second shipment for the same request
	// violates a unique index and causes a Conflict error.
	Create(ctx context.Context, s *model.Shipment) error

	// GetForUpdate is like Get, but locks the shipment row.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Shipment, error)

	// LockMany locks and returns the given shipments, ordered by id
	// in order to avoid deadlocks. A missing id causes a NotFound
	// error.
	LockMany(ctx context.Context, ids []uuid.UUID) ([]model.Shipment, error)

	// UpdateStatus persists the status and actual pickup/delivery
	// times of s.
	UpdateStatus(ctx context.Context, s *model.Shipment) error

	// Link adds the given shipments to the ltlID voyage and moves
	// them into the consolidated status.
	Link(ctx context.Context, ids []uuid.UUID, ltlID uuid.UUID) error

	// Unlink removes the given shipments from their voyage. The
	// consolidated ones move back into the planned status, while other
	// statuses (e.g., cancelled) are kept.
	Unlink(ctx context.Context, ids []uuid.UUID) error

	// SoftDelete marks the shipment as deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type ShipmentsQueryer interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Shipment, error)

	// ForRequest returns the id of the shipment which is linked to
	// the request, or nil if the request is not allocated yet.
	ForRequest(ctx context.Context, requestID uuid.UUID) (*uuid.UUID, error)
}
