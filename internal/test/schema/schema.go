// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema contains the database schema verifier which can be
// used for testing purposes. It checks the tables of a schema (as
// created by the db init-dev and init-prod commands) and the rows
// which are inserted in them for the dev and prod environments.
// Only presence of the expected tables and rows is checked, so extra
// rows do not fail the verification.
package schema

import (
	"context"
	"testing"

	"github.com/momeni/freight/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tables lists the tables which every fdweb schema must have.
var Tables = []string{
	"cargo", "cargo_requirements", "cargo_types", "drivers",
	"ltl_shipments", "maintenance_windows", "outbox", "requests",
	"requirements", "shipments", "tariffs", "vehicles",
}

// Verifier verifies the schema which is visible through its wrapped
// database connection.
type Verifier struct {
	c      repo.Conn // database connection which is used for testing
	schema string
}

// NewVerifier creates a Verifier for the given schema name, e.g.,
// fdweb1 or public, which wraps the c database connection.
func NewVerifier(c repo.Conn, schema string) *Verifier {
	return &Verifier{c: c, schema: schema}
}

// VerifySchema verifies that all tables exist. The t argument is
// marked as failed if the schema was invalid.
func (v *Verifier) VerifySchema(ctx context.Context, t *testing.T) {
	rows, err := v.c.Query(ctx, `SELECT table_name FROM information_schema.tables
WHERE table_schema = ? ORDER BY table_name`, v.schema)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Subset(t, names, Tables)
}

// VerifyProdData verifies the catalog rows which are inserted for
// all environments.
func (v *Verifier) VerifyProdData(ctx context.Context, t *testing.T) {
	v.verifyNames(ctx, t, "cargo_types",
		"general", "fragile", "perishable", "hazardous",
	)
	v.verifyNames(ctx, t, "requirements",
		"refrigeration", "tail-lift", "escort",
	)
}

// VerifyDevData verifies the prod rows and the sample tariffs and
// fleet which are inserted for the development environments. Exactly
// one tariff must be active.
func (v *Verifier) VerifyDevData(ctx context.Context, t *testing.T) {
	v.VerifyProdData(ctx, t)
	v.verifyNames(ctx, t, "tariffs", "standard", "winter")
	assert.Equal(t, 1, v.Count(ctx, t, "tariffs WHERE active"))
	assert.GreaterOrEqual(t, v.Count(ctx, t, "drivers WHERE available"), 3)
	assert.GreaterOrEqual(t, v.Count(ctx, t, "vehicles WHERE available"), 3)
}

func (v *Verifier) verifyNames(
	ctx context.Context, t *testing.T, table string, expected ...string,
) {
	rows, err := v.c.Query(ctx, "SELECT name FROM "+table)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Subset(t, names, expected, "rows of %s", table)
}

// Count returns the rows count of the from clause, e.g., "tariffs WHERE
// active", which must be trusted.
func (v *Verifier) Count(ctx context.Context, t *testing.T, from string) int {
	rows, err := v.c.Query(ctx, "SELECT count(*) FROM "+from)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	return n
}
