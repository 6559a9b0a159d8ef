// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler is a function which runs statements in a transaction.
// Returning a non-nil error (or panicking) rolls the transaction back,
// otherwise it is committed.
type TxHandler func(context.Context, Tx) error

// Conn is a single database connection. It must not be used
// concurrently.
type Conn interface {
	Queryer

	// Tx begins a transaction, runs handler in it, and commits or
	// rolls it back depending on the handler outcome.
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn prevents a Tx from implementing the Conn interface.
	IsConn()
}
