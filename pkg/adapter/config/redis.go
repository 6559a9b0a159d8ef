// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/freight/pkg/adapter/config/settings"
	"github.com/redis/go-redis/v9"
)

// Redis contains the settings of the redis server which keeps the
// idempotent responses. An empty Addr disables the idempotency
// middleware.
type Redis struct {
	Addr     string
	Password string `yaml:",omitempty"`
	DB       int    `yaml:",omitempty"`

	IdempotencyTTL *settings.Duration `yaml:"idempotency-ttl,omitempty"`
}

// Enabled reports if a redis server is configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// ValidateAndNormalize fills the default idempotency TTL (one day)
// and rejects TTLs shorter than one second.
func (r *Redis) ValidateAndNormalize() error {
	if r.DB < 0 {
		return fmt.Errorf("invalid db number: %d", r.DB)
	}
	ttl := settings.Duration(24 * time.Hour)
	settings.OverwriteNil(&r.IdempotencyTTL, &ttl)
	minTTL := settings.Duration(time.Second)
	if err := settings.VerifyRange(&r.IdempotencyTTL, &minTTL, nil); err != nil {
		return fmt.Errorf("idempotency-ttl: %w", err)
	}
	return nil
}

// NewClient connects to the redis server and pings it.
func (r Redis) NewClient(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %q: %w", r.Addr, err)
	}
	return rdb, nil
}
