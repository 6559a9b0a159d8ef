// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package requestsrp provides a reification of the repo.Requests
// interface, storing transport requests with their cargo items.
package requestsrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/shopspring/decimal"
)

// Repo represents the transport requests repository.
type Repo struct {
}

// New instantiates a requests Repo.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps c which must be a *postgres.Conn.
func (requests *Repo) Conn(c repo.Conn) repo.RequestsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return Get(ctx, cq.Conn, id)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (requests *Repo) Tx(tx repo.Tx) repo.RequestsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) Create(ctx context.Context, r *model.Request) error {
	return Create(ctx, tq.Tx, r)
}

func (tq txQueryer) GetForUpdate(
	ctx context.Context, id uuid.UUID,
) (*model.Request, error) {
	return GetForUpdate(ctx, tq.Tx, id)
}

func (tq txQueryer) UpdateStatus(
	ctx context.Context, id uuid.UUID, s model.RequestStatus,
) error {
	return UpdateStatus(ctx, tq.Tx, id, s)
}

func (tq txQueryer) Complete(
	ctx context.Context, id uuid.UUID, finalCost *decimal.Decimal,
) error {
	return Complete(ctx, tq.Tx, id, finalCost)
}

func (tq txQueryer) SetPreliminaryCost(
	ctx context.Context, id uuid.UUID, cost decimal.Decimal,
) error {
	return SetPreliminaryCost(ctx, tq.Tx, id, cost)
}
