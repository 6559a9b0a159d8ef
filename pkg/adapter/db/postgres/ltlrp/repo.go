// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ltlrp provides a reification of the repo.Consolidations
// interface, storing the consolidated (LTL) voyages. Membership is
// kept by the ltl_shipment_id column of the shipments table.
package ltlrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Repo represents the consolidations repository.
type Repo struct {
}

// New instantiates a consolidations Repo.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps c which must be a *postgres.Conn.
func (ltl *Repo) Conn(c repo.Conn) repo.ConsolidationsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.LtlShipment, error) {
	return Get(ctx, cq.Conn, id)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (ltl *Repo) Tx(tx repo.Tx) repo.ConsolidationsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.LtlShipment, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) Create(ctx context.Context, l *model.LtlShipment) error {
	return Create(ctx, tq.Tx, l)
}

func (tq txQueryer) GetForUpdate(
	ctx context.Context, id uuid.UUID,
) (*model.LtlShipment, error) {
	return GetForUpdate(ctx, tq.Tx, id)
}

func (tq txQueryer) Members(ctx context.Context, id uuid.UUID) ([]model.Member, error) {
	return Members(ctx, tq.Tx, id)
}

func (tq txQueryer) SaveAggregates(
	ctx context.Context, id uuid.UUID, l model.Load,
) error {
	return SaveAggregates(ctx, tq.Tx, id, l)
}

func (tq txQueryer) UpdateStatus(
	ctx context.Context, id uuid.UUID, s model.LtlStatus,
) error {
	return UpdateStatus(ctx, tq.Tx, id, s)
}
