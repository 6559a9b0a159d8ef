// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/scram"
)

//go:embed sql/*.sql
var scripts embed.FS

// Script returns the contents of an embedded SQL script, such as
// "sql/tables.sql". It is exported for the integration test suites
// which need to create tables without the role management steps.
func Script(name string) (string, error) {
	b, err := scripts.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", name, err)
	}
	return string(b), nil
}

func execScript[Q postgres.Queryer](
	ctx context.Context, q Q, name string,
) error {
	s, err := Script(name)
	if err != nil {
		return err
	}
	// Without args, all statements are sent in one simple query.
	if _, err := q.Exec(ctx, s); err != nil {
		return fmt.Errorf("executing %q: %w", name, err)
	}
	return nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func roleName(roleSuffix, role repo.Role) string {
	return ident(string(role) + string(roleSuffix))
}

// DropCascadeIfExists drops schema with all of its objects.
func DropCascadeIfExists[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "DROP SCHEMA IF EXISTS "+ident(schema)+" CASCADE")
	return err
}

// CreateSchema creates schema which must not exist.
func CreateSchema[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "CREATE SCHEMA "+ident(schema))
	return err
}

// CreateRoleIfNotExists creates a login role for role+roleSuffix if
// no role with that name exists.
func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix, role repo.Role,
) error {
	name := string(role) + string(roleSuffix)
	rows, err := q.Query(
		ctx, "SELECT 1 FROM pg_roles WHERE rolname=$1", name,
	)
	if err != nil {
		return fmt.Errorf("querying pg_roles: %w", err)
	}
	exists := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating pg_roles: %w", err)
	}
	if exists {
		return nil
	}
	_, err = q.Exec(ctx, "CREATE ROLE "+ident(name)+" WITH LOGIN")
	return err
}

// GrantPrivileges grants ALL privileges on schema to role+roleSuffix.
func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role,
	schema string, role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"GRANT ALL ON SCHEMA %s TO %s",
		ident(schema), roleName(roleSuffix, role),
	))
	return err
}

// SetSearchPath sets the default search_path of role+roleSuffix.
func SetSearchPath[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role,
	schema string, role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"ALTER ROLE %s SET search_path TO %s",
		roleName(roleSuffix, role), ident(schema),
	))
	return err
}

// ChangePasswords hashes passwords with hasher and alters the roles,
// so plain passwords are never sent to the DBMS.
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	iters int,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return fmt.Errorf(
			"got %d roles and %d passwords", len(roles), len(passwords),
		)
	}
	for i, role := range roles {
		h, err := hasher.Hash(passwords[i], "", iters)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", role, err)
		}
		// ALTER ROLE does not accept bind parameters.
		lit := "'" + strings.ReplaceAll(h, "'", "''") + "'"
		_, err = tx.Exec(ctx, fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD %s",
			roleName(roleSuffix, role), lit,
		))
		if err != nil {
			return fmt.Errorf("altering %q role: %w", role, err)
		}
	}
	return nil
}
