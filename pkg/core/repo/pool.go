// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo specifies the persistence expectations of the use cases
// layer. Pool, Conn, and Tx abstract a relational database, while one
// interface per aggregate (e.g., Requests, Fleet, Shipments) lists the
// queries which the use cases may run on a Conn or a Tx. Adapters
// implement these interfaces, so use cases never import a driver.
//
// Operations which must observe a consistent snapshot together with
// the row locks which they acquire are listed only in the XTxQueryer
// interfaces. Read-only lookups are listed in the XQueryer interfaces
// which are embedded by both the XConnQueryer and XTxQueryer.
package repo

import "context"

// ConnHandler is a function which uses a Conn during its execution.
// The Conn is released when the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool is a database connections pool.
type Pool interface {
	// Conn acquires a connection, passes it to handler, and releases
	// it afterwards, returning the handler error.
	Conn(ctx context.Context, handler ConnHandler) error

	// Close closes all idle connections of this pool.
	Close() error
}
