// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/model"
)

// Outbox is the transactional outbox. Events are appended in the same
// transaction as the changes which they describe and are claimed later
// by the relay in order to be published.
type Outbox interface {
	Tx(Tx) OutboxTxQueryer
}

type OutboxTxQueryer interface {
	// Append stores the events as pending.
	Append(ctx context.Context, events ...*model.Event) error

	// Claim locks at most limit pending events (oldest first), skipping
	// the rows which are locked by concurrent relays. Rows whose payload
	// cannot be decoded are marked as failed and are not returned.
	Claim(ctx context.Context, limit int) ([]model.Event, error)

	// MarkPublished marks the events as published.
	MarkPublished(ctx context.Context, ids []uuid.UUID) error

	// MarkFailed keeps the events pending and counts a failed attempt.
	MarkFailed(ctx context.Context, ids []uuid.UUID) error
}
