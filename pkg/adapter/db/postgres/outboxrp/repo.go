// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package outboxrp provides a reification of the repo.Outbox interface.
// Events are stored as jsonb payloads in the outbox table by the same
// transaction which changes the relevant entity status.
package outboxrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Repo represents the outbox repository.
type Repo struct {
}

// New instantiates an outbox Repo.
func New() *Repo {
	return &Repo{}
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps tx which must be a *postgres.Tx.
func (outbox *Repo) Tx(tx repo.Tx) repo.OutboxTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Append(ctx context.Context, events ...*model.Event) error {
	return Append(ctx, tq.Tx, events...)
}

func (tq txQueryer) Claim(ctx context.Context, limit int) ([]model.Event, error) {
	return Claim(ctx, tq.Tx, limit)
}

func (tq txQueryer) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	return MarkPublished(ctx, tq.Tx, ids)
}

func (tq txQueryer) MarkFailed(ctx context.Context, ids []uuid.UUID) error {
	return MarkFailed(ctx, tq.Tx, ids)
}
