// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package relayuc contains the outbox relay use case. Status changes
// are appended to the outbox table in the same transaction which
// performs them. The relay claims pending events periodically and
// hands them to a Publisher, so events are published at least once
// and only if their transaction was committed.
package relayuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
)

// Publisher delivers one event to the outside world, e.g., a message
// broker topic. It must be safe to publish an event more than once.
type Publisher interface {
	Publish(ctx context.Context, e *model.Event) error
}

// UseCase represents the outbox relay.
type UseCase struct {
	pool      repo.Pool
	outboxrp  repo.Outbox
	pub       Publisher
	interval  time.Duration
	batchSize int
}

// New instantiates an outbox relay which claims at most batchSize
// events on each round and runs a round every interval.
func New(
	p repo.Pool, o repo.Outbox, pub Publisher,
	interval time.Duration, batchSize int,
) (*UseCase, error) {
	switch {
	case pub == nil:
		return nil, errors.New("publisher is required")
	case interval <= 0:
		return nil, fmt.Errorf("invalid relay interval: %v", interval)
	case batchSize <= 0:
		return nil, fmt.Errorf("invalid relay batch size: %d", batchSize)
	}
	return &UseCase{
		pool:      p,
		outboxrp:  o,
		pub:       pub,
		interval:  interval,
		batchSize: batchSize,
	}, nil
}

// RelayOnce claims one batch of pending events and publishes them.
// The published events are marked as such, while failed ones remain
// pending for the next round with an incremented attempts counter.
// Once an event of some entity fails, the later events of that entity
// in the batch are held back untouched, so each entity's events are
// published in their creation order. It returns the number of
// published events.
func (uc *UseCase) RelayOnce(ctx context.Context) (published int, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.outboxrp.Tx(tx)
			events, err := q.Claim(ctx, uc.batchSize)
			if err != nil {
				return fmt.Errorf("claiming events: %w", err)
			}
			var ok, failed []uuid.UUID
			blocked := make(map[uuid.UUID]bool)
			for i := range events {
				e := &events[i]
				if blocked[e.EntityID] {
					continue
				}
				if err := uc.pub.Publish(ctx, e); err != nil {
					log.Warn(
						ctx, "failed to publish event",
						log.UUID("event", e.ID),
						log.UUID("entity", e.EntityID),
						slog.String("type", string(e.Type)),
						log.Err("err", err),
					)
					failed = append(failed, e.ID)
					blocked[e.EntityID] = true
					continue
				}
				ok = append(ok, e.ID)
			}
			if len(ok) > 0 {
				if err := q.MarkPublished(ctx, ok); err != nil {
					return fmt.Errorf("marking published: %w", err)
				}
			}
			if len(failed) > 0 {
				if err := q.MarkFailed(ctx, failed); err != nil {
					return fmt.Errorf("marking failed: %w", err)
				}
			}
			published = len(ok)
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}

// Run relays events every interval until ctx is cancelled. Errors of
// a single round are logged and do not stop the relay.
func (uc *UseCase) Run(ctx context.Context) error {
	t := time.NewTicker(uc.interval)
	defer t.Stop()
	log.Info(ctx, "outbox relay is started")
	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "outbox relay is stopped")
			return nil
		case <-t.C:
			n, err := uc.RelayOnce(ctx)
			switch {
			case err != nil && ctx.Err() == nil:
				log.Error(ctx, "outbox relay round failed", log.Err("err", err))
			case n > 0:
				log.Debug(ctx, "outbox events are published", slog.Int("count", n))
			}
		}
	}
}
