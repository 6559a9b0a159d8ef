// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request is a client's ask for moving cargo from one address to
// another. Pricing fills PreliminaryCost and the allocation of a
// shipment fills FinalCost; both remain nil until then.
type Request struct {
	ID              uuid.UUID        `json:"id"`
	CompanyID       uuid.UUID        `json:"company_id"`
	CreatorID       uuid.UUID        `json:"creator_id"`
	PickupAddress   string           `json:"pickup_address"`
	DeliveryAddress string           `json:"delivery_address"`
	PickupDate      time.Time        `json:"pickup_date"`
	DeliveryDate    time.Time        `json:"delivery_date"`
	DistanceKm      decimal.Decimal  `json:"distance_km"`
	Cargo           []Cargo          `json:"cargo"`
	PreliminaryCost *decimal.Decimal `json:"preliminary_cost"`
	FinalCost       *decimal.Decimal `json:"final_cost"`
	Status          RequestStatus    `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Cargo is one item of a Request. Its Type and Requirements are
// resolved references, so pricing may use their multiplier and fees.
type Cargo struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	VolumeM3     decimal.Decimal `json:"volume_m3"`
	Type         CargoType       `json:"type"`
	Requirements []Requirement   `json:"requirements"`
}

// CargoType classifies cargo. Its Multiplier (at least 1.0) scales the
// cargo share of the base cost during pricing.
type CargoType struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Requirement is a special handling need (e.g., refrigeration) which
// adds a flat fee per cargo item carrying it.
type Requirement struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	FlatFee decimal.Decimal `json:"flat_fee"`
}

// These errors describe invalid request contents. They are wrapped
// by the use cases layer as validation errors.
var (
	ErrNegativeDistance = errors.New("distance must not be negative")
	ErrNegativeWeight   = errors.New("weight must not be negative")
	ErrNegativeVolume   = errors.New("volume must not be negative")
	ErrMultiplierBelow1 = errors.New("multiplier must be at least 1")
	ErrNegativeFee      = errors.New("fee must not be negative")
)

// Validate checks the invariants of r which can be verified without
// consulting the database: ordered dates and non-negative quantities.
func (r *Request) Validate() error {
	w := Window{Start: r.PickupDate, End: r.DeliveryDate}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("pickup/delivery dates: %w", err)
	}
	if r.DistanceKm.IsNegative() {
		return ErrNegativeDistance
	}
	for i := range r.Cargo {
		if err := r.Cargo[i].Validate(); err != nil {
			return fmt.Errorf("cargo #%d: %w", i, err)
		}
	}
	return nil
}

// Validate checks that c has non-negative weight and volume.
func (c *Cargo) Validate() error {
	switch {
	case c.WeightKg.IsNegative():
		return ErrNegativeWeight
	case c.VolumeM3.IsNegative():
		return ErrNegativeVolume
	}
	return nil
}

// Validate checks that ct multiplier is at least one.
func (ct *CargoType) Validate() error {
	if ct.Multiplier.LessThan(decimal.NewFromInt(1)) {
		return ErrMultiplierBelow1
	}
	return nil
}

// Validate checks that rq fee is not negative.
func (rq *Requirement) Validate() error {
	if rq.FlatFee.IsNegative() {
		return ErrNegativeFee
	}
	return nil
}

// Load is the total weight and volume of some cargo.
type Load struct {
	WeightKg decimal.Decimal `json:"weight_kg"`
	VolumeM3 decimal.Decimal `json:"volume_m3"`
}

// Add returns the sum of l and the given cargo items.
func (l Load) Add(cargo ...Cargo) Load {
	for _, c := range cargo {
		l.WeightKg = l.WeightKg.Add(c.WeightKg)
		l.VolumeM3 = l.VolumeM3.Add(c.VolumeM3)
	}
	return l
}

// TotalLoad sums the weight and volume of all cargo of r.
func (r *Request) TotalLoad() Load {
	return Load{}.Add(r.Cargo...)
}
