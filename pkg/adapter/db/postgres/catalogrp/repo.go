// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package catalogrp provides a reification of the repo.Catalog
// interface, managing tariffs, cargo types, and requirements which
// are used by the pricing engine.
package catalogrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Repo represents the pricing catalog repository.
type Repo struct {
}

// New instantiates a catalog Repo.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps c which must be a *postgres.Conn.
func (catalog *Repo) Conn(c repo.Conn) repo.CatalogConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) ActiveTariff(ctx context.Context) (*model.Tariff, error) {
	return ActiveTariff(ctx, cq.Conn)
}

func (cq connQueryer) CargoTypes(
	ctx context.Context, ids []uuid.UUID,
) (map[uuid.UUID]model.CargoType, error) {
	return CargoTypes(ctx, cq.Conn, ids)
}

func (cq connQueryer) Requirements(
	ctx context.Context, ids []uuid.UUID,
) (map[uuid.UUID]model.Requirement, error) {
	return Requirements(ctx, cq.Conn, ids)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (catalog *Repo) Tx(tx repo.Tx) repo.CatalogTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) ActiveTariff(ctx context.Context) (*model.Tariff, error) {
	return ActiveTariff(ctx, tq.Tx)
}

func (tq txQueryer) CargoTypes(
	ctx context.Context, ids []uuid.UUID,
) (map[uuid.UUID]model.CargoType, error) {
	return CargoTypes(ctx, tq.Tx, ids)
}

func (tq txQueryer) Requirements(
	ctx context.Context, ids []uuid.UUID,
) (map[uuid.UUID]model.Requirement, error) {
	return Requirements(ctx, tq.Tx, ids)
}

func (tq txQueryer) CreateTariff(ctx context.Context, t *model.Tariff) error {
	return CreateTariff(ctx, tq.Tx, t)
}

func (tq txQueryer) CreateCargoType(
	ctx context.Context, ct *model.CargoType,
) error {
	return CreateCargoType(ctx, tq.Tx, ct)
}

func (tq txQueryer) CreateRequirement(
	ctx context.Context, rq *model.Requirement,
) error {
	return CreateRequirement(ctx, tq.Tx, rq)
}

func (tq txQueryer) ActivateTariff(
	ctx context.Context, id uuid.UUID,
) (*model.Tariff, error) {
	return ActivateTariff(ctx, tq.Tx, id)
}
