// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"time"

	"github.com/momeni/freight/pkg/adapter/config/settings"
	"github.com/momeni/freight/pkg/adapter/db/postgres/availrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/catalogrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/fleetrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/ltlrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/outboxrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/requestsrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/shipmentsrp"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/availuc"
	"github.com/momeni/freight/pkg/core/usecase/consolidationuc"
	"github.com/momeni/freight/pkg/core/usecase/dispatchuc"
	"github.com/momeni/freight/pkg/core/usecase/fleetuc"
	"github.com/momeni/freight/pkg/core/usecase/pricinguc"
	"github.com/momeni/freight/pkg/core/usecase/relayuc"
	"github.com/momeni/freight/pkg/core/usecase/requestsuc"
)

// Boundaries of the use cases settings.
var (
	minMaxMembers, maxMaxMembers = 1, 500
	minBatchSize, maxBatchSize   = 1, 1000

	minRelayInterval = settings.Duration(100 * time.Millisecond)
	maxRelayInterval = settings.Duration(time.Hour)
)

// Usecases contains the use cases related settings.
type Usecases struct {
	Dispatch      Dispatch
	Consolidation Consolidation
	Relay         Relay
}

// Dispatch contains the allocation settings.
type Dispatch struct {
	// CapacityCheck makes the allocations verify that the request
	// cargo fits the vehicle payload and volume. It is on by default.
	CapacityCheck *bool `yaml:"capacity-check,omitempty"`
}

// Consolidation contains the LTL voyages settings.
type Consolidation struct {
	MaxMembers *int `yaml:"max-members,omitempty"` // 50 by default
}

// Relay contains the outbox relay settings.
type Relay struct {
	Interval  *settings.Duration `yaml:",omitempty"`           // 2s by default
	BatchSize *int               `yaml:"batch-size,omitempty"` // 100 by default
}

// ValidateAndNormalize fills the defaults and verifies the ranges.
func (u *Usecases) ValidateAndNormalize() error {
	capacityCheck := true
	settings.OverwriteNil(&u.Dispatch.CapacityCheck, &capacityCheck)

	maxMembers := 50
	settings.OverwriteNil(&u.Consolidation.MaxMembers, &maxMembers)
	if err := settings.VerifyRange(
		&u.Consolidation.MaxMembers, &minMaxMembers, &maxMaxMembers,
	); err != nil {
		return fmt.Errorf("consolidation.max-members: %w", err)
	}

	interval := settings.Duration(2 * time.Second)
	settings.OverwriteNil(&u.Relay.Interval, &interval)
	if err := settings.VerifyRange(
		&u.Relay.Interval, &minRelayInterval, &maxRelayInterval,
	); err != nil {
		return fmt.Errorf("relay.interval: %w", err)
	}
	batchSize := 100
	settings.OverwriteNil(&u.Relay.BatchSize, &batchSize)
	if err := settings.VerifyRange(
		&u.Relay.BatchSize, &minBatchSize, &maxBatchSize,
	); err != nil {
		return fmt.Errorf("relay.batch-size: %w", err)
	}
	return nil
}

// UseCases groups the use case instances which are served by the
// REST resources.
type UseCases struct {
	Requests      *requestsuc.UseCase
	Pricing       *pricinguc.UseCase
	Fleet         *fleetuc.UseCase
	Availability  *availuc.UseCase
	Dispatch      *dispatchuc.UseCase
	Consolidation *consolidationuc.UseCase
}

// NewUseCases instantiates the repositories and all use cases which
// use the p connection pool.
func (u Usecases) NewUseCases(p repo.Pool) (*UseCases, error) {
	requestsRepo := requestsrp.New()
	catalogRepo := catalogrp.New()
	fleetRepo := fleetrp.New()
	shipmentsRepo := shipmentsrp.New()
	outboxRepo := outboxrp.New()

	avail := availuc.New(p, fleetRepo, availrp.New())
	dispatch, err := dispatchuc.New(
		p,
		dispatchuc.Repos{
			Requests:  requestsRepo,
			Fleet:     fleetRepo,
			Shipments: shipmentsRepo,
			Outbox:    outboxRepo,
		},
		avail,
		dispatchuc.WithCapacityCheck(*u.Dispatch.CapacityCheck),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatch use case: %w", err)
	}
	consolidation, err := consolidationuc.New(
		p, ltlrp.New(), shipmentsRepo, outboxRepo,
		consolidationuc.WithMaxMembers(*u.Consolidation.MaxMembers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating consolidation use case: %w", err)
	}
	return &UseCases{
		Requests: requestsuc.New(
			p, requestsRepo, catalogRepo, outboxRepo,
		),
		Pricing:       pricinguc.New(p, catalogRepo, requestsRepo),
		Fleet:         fleetuc.New(p, fleetRepo, avail),
		Availability:  avail,
		Dispatch:      dispatch,
		Consolidation: consolidation,
	}, nil
}

// NewRelay instantiates the outbox relay which publishes through pub.
func (u Usecases) NewRelay(
	p repo.Pool, pub relayuc.Publisher,
) (*relayuc.UseCase, error) {
	return relayuc.New(
		p, outboxrp.New(), pub,
		u.Relay.Interval.Std(), *u.Relay.BatchSize,
	)
}
