// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fixture is an internal helper for the integration test
// suites. It creates the fdweb tables in a test database and inserts
// the catalog, fleet, and request rows which the suites need.
// Rows are inserted by the repository packages directly, so the use
// cases under test are not involved in the preparation of their
// preconditions.
package fixture

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/catalogrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/fleetrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/requestsrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Fixture creates rows in the database of its Pool.
type Fixture struct {
	Pool *postgres.Pool
}

// New creates the tables and the production catalog rows using the
// pool connections.
func New(ctx context.Context, t *testing.T, pool *postgres.Pool) *Fixture {
	t.Helper()
	for _, name := range []string{"sql/tables.sql", "sql/prod.sql"} {
		s, err := schemarp.Script(name)
		require.NoError(t, err)
		err = pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			_, err := c.Exec(ctx, s)
			return err
		})
		require.NoError(t, err, "executing %s", name)
	}
	return &Fixture{Pool: pool}
}

// Reset removes all rows except the production catalog rows.
func (f *Fixture) Reset(t *testing.T) {
	t.Helper()
	f.exec(t, `TRUNCATE outbox, shipments, ltl_shipments,
maintenance_windows, cargo_requirements, cargo, requests, vehicles,
drivers, tariffs`)
}

func (f *Fixture) exec(t *testing.T, sql string, args ...any) {
	t.Helper()
	ctx := context.Background()
	err := f.Pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		_, err := c.Exec(ctx, sql, args...)
		return err
	})
	require.NoError(t, err)
}

// Tx runs fn in a committed transaction and requires it to succeed.
func (f *Fixture) Tx(t *testing.T, fn func(ctx context.Context, tx repo.Tx) error) {
	t.Helper()
	ctx := context.Background()
	err := f.Pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, fn)
	})
	require.NoError(t, err)
}

// D parses s as a decimal or panics.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// March returns the midnight of the given day of March 2024 in UTC.
func March(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

// Days returns the [March start, March end] window.
func Days(start, end int) model.Window {
	return model.Window{Start: March(start), End: March(end)}
}

// Tariff inserts and activates a tariff with the given rates.
func (f *Fixture) Tariff(t *testing.T, base, perKm, perKg, perM3 string) *model.Tariff {
	t.Helper()
	tr := &model.Tariff{
		ID:        uuid.New(),
		Name:      "tariff-" + uuid.NewString()[:8],
		BaseFee:   D(base),
		CostPerKm: D(perKm),
		CostPerKg: D(perKg),
		CostPerM3: D(perM3),
		CreatedAt: time.Now().UTC(),
	}
	var active *model.Tariff
	f.Tx(t, func(ctx context.Context, tx repo.Tx) (err error) {
		q := catalogrp.New().Tx(tx)
		if err = q.CreateTariff(ctx, tr); err != nil {
			return err
		}
		active, err = q.ActivateTariff(ctx, tr.ID)
		return err
	})
	return active
}

// CargoType inserts a cargo type with the given multiplier.
func (f *Fixture) CargoType(t *testing.T, multiplier string) *model.CargoType {
	t.Helper()
	ct := &model.CargoType{
		ID:         uuid.New(),
		Name:       "type-" + uuid.NewString()[:8],
		Multiplier: D(multiplier),
	}
	f.Tx(t, func(ctx context.Context, tx repo.Tx) error {
		return catalogrp.New().Tx(tx).CreateCargoType(ctx, ct)
	})
	return ct
}

// Requirement inserts a special handling requirement.
func (f *Fixture) Requirement(t *testing.T, fee string) *model.Requirement {
	t.Helper()
	rq := &model.Requirement{
		ID:      uuid.New(),
		Name:    "req-" + uuid.NewString()[:8],
		FlatFee: D(fee),
	}
	f.Tx(t, func(ctx context.Context, tx repo.Tx) error {
		return catalogrp.New().Tx(tx).CreateRequirement(ctx, rq)
	})
	return rq
}

// Driver inserts an available driver.
func (f *Fixture) Driver(t *testing.T) *model.Driver {
	t.Helper()
	d := &model.Driver{
		ID:            uuid.New(),
		Name:          "driver",
		LicenseNumber: "DL-" + uuid.NewString()[:8],
		Available:     true,
		Status:        model.AvailableLabel,
	}
	f.Tx(t, func(ctx context.Context, tx repo.Tx) error {
		return fleetrp.New().Tx(tx).CreateDriver(ctx, d)
	})
	return d
}

// Vehicle inserts an available vehicle with the given capacity.
func (f *Fixture) Vehicle(t *testing.T, payloadKg, volumeM3 string) *model.Vehicle {
	t.Helper()
	v := &model.Vehicle{
		ID:          uuid.New(),
		PlateNumber: "P-" + uuid.NewString()[:8],
		Model:       "truck",
		PayloadKg:   D(payloadKg),
		VolumeM3:    D(volumeM3),
		Available:   true,
		Status:      model.AvailableLabel,
	}
	f.Tx(t, func(ctx context.Context, tx repo.Tx) error {
		return fleetrp.New().Tx(tx).CreateVehicle(ctx, v)
	})
	return v
}

// Cargo returns a cargo item of ct type, which is not stored alone.
func Cargo(weightKg, volumeM3 string, ct *model.CargoType, reqs ...*model.Requirement) model.Cargo {
	c := model.Cargo{
		ID:       uuid.New(),
		Name:     "box",
		WeightKg: D(weightKg),
		VolumeM3: D(volumeM3),
		Type:     *ct,
	}
	for _, rq := range reqs {
		c.Requirements = append(c.Requirements, *rq)
	}
	return c
}

// Request inserts a new request for the w window with the given
// distance and cargo items.
func (f *Fixture) Request(
	t *testing.T, w model.Window, distanceKm string, cargo ...model.Cargo,
) *model.Request {
	t.Helper()
	now := time.Now().UTC()
	r := &model.Request{
		ID:              uuid.New(),
		CompanyID:       uuid.New(),
		CreatorID:       uuid.New(),
		PickupAddress:   "Tehran",
		DeliveryAddress: "Tabriz",
		PickupDate:      w.Start,
		DeliveryDate:    w.End,
		DistanceKm:      D(distanceKm),
		Cargo:           cargo,
		Status:          model.RequestNew,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.Tx(t, func(ctx context.Context, tx repo.Tx) error {
		return requestsrp.New().Tx(tx).Create(ctx, r)
	})
	return r
}

// Count returns the number of rows of table which satisfy the where
// condition (which may use the args).
func (f *Fixture) Count(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	var n int
	ctx := context.Background()
	err := f.Pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rows, err := c.Query(
			ctx, "SELECT count(*) FROM "+table+" WHERE "+where, args...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rows.Next()
		return rows.Scan(&n)
	})
	require.NoError(t, err)
	return n
}
