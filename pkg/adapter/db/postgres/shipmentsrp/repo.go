// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package shipmentsrp provides a reification of the repo.Shipments
// interface. Shipments are soft deleted, so deleted rows are hidden
// from all queries but still keep their request allocated.
package shipmentsrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Repo represents the shipments repository.
type Repo struct {
}

// New instantiates a shipments Repo.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps c which must be a *postgres.Conn.
func (shipments *Repo) Conn(c repo.Conn) repo.ShipmentsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) ForRequest(
	ctx context.Context, requestID uuid.UUID,
) (*uuid.UUID, error) {
	return ForRequest(ctx, cq.Conn, requestID)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (shipments *Repo) Tx(tx repo.Tx) repo.ShipmentsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) ForRequest(
	ctx context.Context, requestID uuid.UUID,
) (*uuid.UUID, error) {
	return ForRequest(ctx, tq.Tx, requestID)
}

func (tq txQueryer) Create(ctx context.Context, s *model.Shipment) error {
	return Create(ctx, tq.Tx, s)
}

func (tq txQueryer) GetForUpdate(
	ctx context.Context, id uuid.UUID,
) (*model.Shipment, error) {
	return GetForUpdate(ctx, tq.Tx, id)
}

func (tq txQueryer) LockMany(
	ctx context.Context, ids []uuid.UUID,
) ([]model.Shipment, error) {
	return LockMany(ctx, tq.Tx, ids)
}

func (tq txQueryer) UpdateStatus(ctx context.Context, s *model.Shipment) error {
	return UpdateStatus(ctx, tq.Tx, s)
}

func (tq txQueryer) Link(
	ctx context.Context, ids []uuid.UUID, ltlID uuid.UUID,
) error {
	return Link(ctx, tq.Tx, ids, ltlID)
}

func (tq txQueryer) Unlink(ctx context.Context, ids []uuid.UUID) error {
	return Unlink(ctx, tq.Tx, ids)
}

func (tq txQueryer) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return SoftDelete(ctx, tq.Tx, id)
}
