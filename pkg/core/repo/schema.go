// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema is the repository for database schema and roles management.
// It is used by the database initialization use case. Statements of
// this repository are DDL and so the schema and role names must be
// trusted values (not user inputs).
//
// Roles and their passwords are changed in one transaction, so a new
// role may not login before its password is set.
type Schema interface {
	Tx(Tx) SchemaTxQueryer
}

// SchemaTxQueryer lists the schema operations which need an ongoing
// transaction.
type SchemaTxQueryer interface {
	SchemaQueryer

	// ChangePasswords updates the passwords of roles in the current
	// transaction. The roles and passwords slices are used in pair.
	// Passwords are hashed before being sent to the DBMS, so they are
	// not leaked by a statements log.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error

	// CreateTables creates all tables and indexes of the fdweb in the
	// current search_path. The current schema must be empty.
	CreateTables(ctx context.Context) error

	// SeedDevData inserts sample rows which are useful for development,
	// e.g., an active tariff, a few cargo types, drivers, and vehicles.
	SeedDevData(ctx context.Context) error

	// SeedProdData inserts the rows which every deployment needs.
	SeedProdData(ctx context.Context) error
}

// SchemaQueryer lists the schema and role management operations.
type SchemaQueryer interface {
	// DropCascadeIfExists drops the schema (if it exists) with all of
	// its tables.
	DropCascadeIfExists(ctx context.Context, schema string) error

	// CreateSchema creates the schema. It must not exist already.
	CreateSchema(ctx context.Context, schema string) error

	// CreateRoleIfNotExists creates a login role without password.
	// The role name may be suffixed based on the repository settings.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges grants ALL privileges on schema to role.
	GrantPrivileges(ctx context.Context, schema string, role Role) error

	// SetSearchPath makes schema the default search_path of role.
	SetSearchPath(ctx context.Context, schema string, role Role) error
}
