// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp provides a reification of the repo.Schema interface
// making it possible to drop and create the fdweb schema, manage its
// database roles, and create its tables with their initial rows.
package schemarp

import (
	"context"

	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/scram"
)

// Repo represents a schema management repository.
type Repo struct {
	roleSuffix repo.Role
	hasher     scram.Hasher
	iters      int
}

// New instantiates a schema management Repo. The roleSuffix is
// appended to all role names (so multiple deployments may share one
// database server) and hasher computes the SCRAM form of passwords
// with iters iterations.
func New(roleSuffix repo.Role, hasher scram.Hasher, iters int) *Repo {
	return &Repo{roleSuffix: roleSuffix, hasher: hasher, iters: iters}
}

type txQueryer struct {
	*postgres.Tx
	*Repo
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer. Otherwise, it will
// panic.
func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt, Repo: schema}
}

// DropCascadeIfExists drops the `schema` schema and all of its
// objects if it exists.
func (tq txQueryer) DropCascadeIfExists(
	ctx context.Context, schema string,
) error {
	return DropCascadeIfExists(ctx, tq.Tx, schema)
}

// CreateSchema creates the `schema` schema.
func (tq txQueryer) CreateSchema(
	ctx context.Context, schema string,
) error {
	return CreateSchema(ctx, tq.Tx, schema)
}

// CreateRoleIfNotExists creates the (suffixed) `role` login role if
// it does not exist. No password is set for it.
func (tq txQueryer) CreateRoleIfNotExists(
	ctx context.Context, role repo.Role,
) error {
	return CreateRoleIfNotExists(ctx, tq.Tx, tq.roleSuffix, role)
}

// GrantPrivileges grants ALL privileges on `schema` to `role`.
func (tq txQueryer) GrantPrivileges(
	ctx context.Context, schema string, role repo.Role,
) error {
	return GrantPrivileges(ctx, tq.Tx, tq.roleSuffix, schema, role)
}

// SetSearchPath sets the default search_path of `role` to `schema`.
func (tq txQueryer) SetSearchPath(
	ctx context.Context, schema string, role repo.Role,
) error {
	return SetSearchPath(ctx, tq.Tx, tq.roleSuffix, schema, role)
}

// ChangePasswords updates the passwords of the given roles in the
// current transaction. The roles and passwords slices must have the
// same number of entries, so they can be used in pair.
func (tq txQueryer) ChangePasswords(
	ctx context.Context, roles []repo.Role, passwords []string,
) error {
	return ChangePasswords(
		ctx, tq.Tx, tq.roleSuffix, tq.hasher, tq.iters, roles, passwords,
	)
}

// CreateTables creates the fdweb tables in the current search_path.
func (tq txQueryer) CreateTables(ctx context.Context) error {
	return execScript(ctx, tq.Tx, "sql/tables.sql")
}

// SeedDevData inserts a sample tariff, drivers, and vehicles.
func (tq txQueryer) SeedDevData(ctx context.Context) error {
	return execScript(ctx, tq.Tx, "sql/dev.sql")
}

// SeedProdData inserts the default cargo types and requirements.
func (tq txQueryer) SeedProdData(ctx context.Context) error {
	return execScript(ctx, tq.Tx, "sql/prod.sql")
}
