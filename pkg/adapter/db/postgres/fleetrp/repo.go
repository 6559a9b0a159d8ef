// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fleetrp provides a reification of the repo.Fleet interface,
// storing drivers, vehicles, and vehicle maintenance windows.
package fleetrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Repo represents the fleet repository.
type Repo struct {
}

// New instantiates a fleet Repo.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps c which must be a *postgres.Conn.
func (fleet *Repo) Conn(c repo.Conn) repo.FleetConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	return GetDriver(ctx, cq.Conn, id)
}

func (cq connQueryer) GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return GetVehicle(ctx, cq.Conn, id)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (fleet *Repo) Tx(tx repo.Tx) repo.FleetTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	return GetDriver(ctx, tq.Tx, id)
}

func (tq txQueryer) GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return GetVehicle(ctx, tq.Tx, id)
}

func (tq txQueryer) CreateDriver(ctx context.Context, d *model.Driver) error {
	return CreateDriver(ctx, tq.Tx, d)
}

func (tq txQueryer) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	return CreateVehicle(ctx, tq.Tx, v)
}

func (tq txQueryer) AddMaintenance(
	ctx context.Context, mw *model.MaintenanceWindow,
) error {
	return AddMaintenance(ctx, tq.Tx, mw)
}

func (tq txQueryer) LockDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	return LockDriver(ctx, tq.Tx, id)
}

func (tq txQueryer) LockVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return LockVehicle(ctx, tq.Tx, id)
}

func (tq txQueryer) SetDriverAvailable(
	ctx context.Context, id uuid.UUID, available bool,
) error {
	return SetAvailable(ctx, tq.Tx, &gDriver{}, id, available)
}

func (tq txQueryer) SetVehicleAvailable(
	ctx context.Context, id uuid.UUID, available bool,
) error {
	return SetAvailable(ctx, tq.Tx, &gVehicle{}, id, available)
}
