// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/freight/pkg/core/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx represents a READ-COMMITTED database transaction which may not
// be used concurrently. Allocation, lifecycle, and consolidation use
// cases rely on its row locks (see ForUpdate) instead of a stricter
// isolation level, so two transactions which touch the same driver,
// vehicle, request, shipment, or voyage are serialized by PostgreSQL.
//
// Tx embeds the *gorm.DB, hence, may be used like GORM from within
// the repository packages (which can depend on frameworks).
type Tx struct {
	*gorm.DB
}

// Exec runs sql with the args arguments and returns the number of
// affected rows. With args, sql must contain exactly one statement;
// without them, it may contain semi-colon separated statements.
// Both of the $1 and ? placeholders are supported.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tt := tx.DB.WithContext(ctx).Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, err
	}
	return tt.RowsAffected, nil
}

// Query runs the sql statement with the args arguments and returns
// its result set. Neither of Query nor Exec may be called again until
// the returned Rows is closed.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := tx.DB.WithContext(ctx).Raw(sql, args...).Rows()
	return rowsAdapter{rows}, err
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB instance, configuring it
// to operate on the given ctx context (in a gorm.Session).
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}

// ForUpdate is like GORM, but the selected rows are locked with
// SELECT ... FOR UPDATE until the end of this transaction. Callers
// which lock more than one row must select them in a stable order.
func (tx *Tx) ForUpdate(ctx context.Context) *gorm.DB {
	return tx.GORM(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// ForUpdateSkipLocked is like ForUpdate, but rows which are locked by
// other transactions are skipped instead of being waited for. It lets
// concurrent workers claim disjoint batches of a queue table.
func (tx *Tx) ForUpdateSkipLocked(ctx context.Context) *gorm.DB {
	return tx.GORM(ctx).Clauses(clause.Locking{
		Strength: "UPDATE",
		Options:  "SKIP LOCKED",
	})
}
