// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package initdbuc

import (
	"context"

	"github.com/momeni/freight/pkg/core/repo"
)

// Settings represents the database-related configuration settings
// which are required for the database initialization.
type Settings interface {
	// ConnectionPool creates a database connection pool for the `r`
	// role using the connection information which are kept in this
	// Settings instance.
	//
	// Password values are kept in a passwords file in a specific
	// password dir. Each non-empty and non-commented line of that file
	// should conform with this format:
	//
	//	host:port:dbname:role:password
	//
	// If a temporary passwords file (as created by RenewPasswords) is
	// used for establishment of the connection pool, it will be moved
	// over the main passwords file before returning.
	ConnectionPool(ctx context.Context, r repo.Role) (repo.Pool, error)

	// NewSchemaRepo instantiates a fresh Schema repository. Role names
	// may be suffixed based on the settings and the Schema repository
	// needs to use the same suffix when it creates or alters roles.
	NewSchemaRepo() repo.Schema

	// RenewPasswords generates new secure passwords for the given roles
	// and after recording them in a temporary file, will use the change
	// function in order to update the passwords of those roles in the
	// database too. The change function may perform the update in a
	// transaction which is not committed yet, so moving the temporary
	// file over the main passwords file is left to the returned
	// finalizer function.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context,
			roles []repo.Role,
			passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)
}
