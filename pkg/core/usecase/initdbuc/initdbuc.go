// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package initdbuc contains the database initialization use case.
// It connects as the admin role, drops and recreates the fdweb schema,
// ensures that the normal role exists with proper privileges and a new
// password, and then connects as the normal role in order to create
// tables and fill them with the development or production data.
//
// All data in the fdweb schema are lost, so these operations must
// only be invoked explicitly by an operator.
package initdbuc

import (
	"context"
	"fmt"

	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/repo"
)

// SchemaName is the name of the database schema which keeps all
// tables of the fdweb. Its number is increased on incompatible
// changes of the tables layout.
const SchemaName = "fdweb1"

// UseCase represents the database initialization use case.
type UseCase struct {
	settings   Settings    // target settings
	schemaRepo repo.Schema // schema management repo
}

// New instantiates a database initialization use case.
func New(ss Settings) *UseCase {
	return &UseCase{
		settings:   ss,
		schemaRepo: ss.NewSchemaRepo(),
	}
}

// InitDev initializes the database with sample data which are
// suitable for development, like an active tariff, a few drivers,
// and vehicles.
func (uc *UseCase) InitDev(ctx context.Context) error {
	return uc.initDB(ctx, func(ctx context.Context, q repo.SchemaTxQueryer) error {
		if err := q.SeedProdData(ctx); err != nil {
			return err
		}
		return q.SeedDevData(ctx)
	})
}

// InitProd initializes the database with the minimal data which every
// deployment needs (e.g., the default cargo types).
func (uc *UseCase) InitProd(ctx context.Context) error {
	return uc.initDB(ctx, func(ctx context.Context, q repo.SchemaTxQueryer) error {
		return q.SeedProdData(ctx)
	})
}

func (uc *UseCase) initDB(
	ctx context.Context,
	seed func(ctx context.Context, q repo.SchemaTxQueryer) error,
) error {
	if err := uc.dropAndCreateAgain(ctx); err != nil {
		return fmt.Errorf("dropping/recreating schema: %w", err)
	}
	p, err := uc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.schemaRepo.Tx(tx)
			if err := q.CreateTables(ctx); err != nil {
				return fmt.Errorf("creating tables: %w", err)
			}
			if err := seed(ctx, q); err != nil {
				return fmt.Errorf("seeding tables: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("normal connection: %w", err)
	}
	log.Info(ctx, "database is initialized")
	return nil
}

func (uc *UseCase) dropAndCreateAgain(ctx context.Context) error {
	p, err := uc.settings.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for admin: %w", err)
	}
	defer p.Close()
	var finalizer func() error
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.schemaRepo.Tx(tx)
			sn := SchemaName
			if err := q.DropCascadeIfExists(ctx, sn); err != nil {
				return fmt.Errorf("dropping %q: %w", sn, err)
			}
			if err := q.CreateSchema(ctx, sn); err != nil {
				return fmt.Errorf("creating %q: %w", sn, err)
			}
			if err := q.CreateRoleIfNotExists(
				ctx, repo.NormalRole,
			); err != nil {
				return fmt.Errorf("creating normal role: %w", err)
			}
			if err := q.GrantPrivileges(
				ctx, sn, repo.NormalRole,
			); err != nil {
				return fmt.Errorf("granting normal role privs: %w", err)
			}
			if err := q.SetSearchPath(
				ctx, sn, repo.NormalRole,
			); err != nil {
				return fmt.Errorf(
					"setting search_path of normal role to %q: %w",
					sn, err,
				)
			}
			finalizer, err = uc.settings.RenewPasswords(
				ctx, q.ChangePasswords, repo.AdminRole, repo.NormalRole,
			)
			if err != nil {
				return fmt.Errorf("RenewPasswords: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	if err := finalizer(); err != nil {
		return fmt.Errorf("finalizing passwords renewal: %w", err)
	}
	return nil
}
