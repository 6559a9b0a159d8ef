// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package availrp provides a reification of the repo.Availability
// interface. Its queries find shipments and maintenance windows which
// overlap a given window under inclusive bounds, so they are served by
// the (resource_id, start, end) indexes of those tables.
package availrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Repo represents the availability repository.
type Repo struct {
}

// New instantiates an availability Repo.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps c which must be a *postgres.Conn.
func (avail *Repo) Conn(c repo.Conn) repo.AvailabilityQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) OverlappingShipment(
	ctx context.Context, kind model.ResourceKind, id uuid.UUID,
	w model.Window,
) (*uuid.UUID, error) {
	return OverlappingShipment(ctx, cq.Conn, kind, id, w)
}

func (cq connQueryer) OverlappingMaintenance(
	ctx context.Context, vehicleID uuid.UUID, w model.Window,
) (*uuid.UUID, error) {
	return OverlappingMaintenance(ctx, cq.Conn, vehicleID, w)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (avail *Repo) Tx(tx repo.Tx) repo.AvailabilityQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) OverlappingShipment(
	ctx context.Context, kind model.ResourceKind, id uuid.UUID,
	w model.Window,
) (*uuid.UUID, error) {
	return OverlappingShipment(ctx, tq.Tx, kind, id, w)
}

func (tq txQueryer) OverlappingMaintenance(
	ctx context.Context, vehicleID uuid.UUID, w model.Window,
) (*uuid.UUID, error) {
	return OverlappingMaintenance(ctx, tq.Tx, vehicleID, w)
}
