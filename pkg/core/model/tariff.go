// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tariff is a pricing rate card. At most one tariff is Active and the
// activation is an explicit administrative transition.
type Tariff struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	BaseFee   decimal.Decimal `json:"base_fee"`
	CostPerKm decimal.Decimal `json:"cost_per_km"`
	CostPerKg decimal.Decimal `json:"cost_per_kg"`
	CostPerM3 decimal.Decimal `json:"cost_per_m3"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Validate ensures that no rate of t is negative.
func (t *Tariff) Validate() error {
	for _, d := range []decimal.Decimal{
		t.BaseFee, t.CostPerKm, t.CostPerKg, t.CostPerM3,
	} {
		if d.IsNegative() {
			return ErrNegativeFee
		}
	}
	return nil
}

// PriceBreakdown itemizes a preliminary cost. Each component is
// rounded to two decimal places, while PreliminaryCost is the rounded
// sum of the unrounded components.
type PriceBreakdown struct {
	TariffID              uuid.UUID       `json:"tariff_id"`
	BaseFee               decimal.Decimal `json:"base_fee"`
	DistanceCost          decimal.Decimal `json:"distance_cost"`
	WeightCost            decimal.Decimal `json:"weight_cost"`
	VolumeCost            decimal.Decimal `json:"volume_cost"`
	CargoTypeSurcharge    decimal.Decimal `json:"cargo_type_surcharge"`
	RequirementsSurcharge decimal.Decimal `json:"requirements_surcharge"`
	PreliminaryCost       decimal.Decimal `json:"preliminary_cost"`
}
