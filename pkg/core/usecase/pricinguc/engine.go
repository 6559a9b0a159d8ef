// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pricinguc

import (
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Price computes the preliminary cost of r using the t tariff:
//
//	distanceCost = distanceKm * costPerKm
//	weightCost   = sum(weight) * costPerKg
//	volumeCost   = sum(volume) * costPerM3
//	cargoTypeSurcharge = (baseFee + distanceCost)
//	    * sum(max(0, multiplier - 1)) / len(cargo)
//	requirementsSurcharge = sum of flat fees over all cargo requirements
//
// The cost is the sum of baseFee and the above items. Sub-totals are
// accumulated without rounding and are rounded to two decimal places
// only in the returned breakdown. Price is a pure function and its
// cargo list may be empty.
func Price(t *model.Tariff, r *model.Request) *model.PriceBreakdown {
	distanceCost := r.DistanceKm.Mul(t.CostPerKm)
	load := r.TotalLoad()
	weightCost := load.WeightKg.Mul(t.CostPerKg)
	volumeCost := load.VolumeM3.Mul(t.CostPerM3)

	typeSurcharge := decimal.Zero
	reqSurcharge := decimal.Zero
	if n := len(r.Cargo); n > 0 {
		extras := decimal.Zero
		for _, c := range r.Cargo {
			if extra := c.Type.Multiplier.Sub(one); extra.IsPositive() {
				extras = extras.Add(extra)
			}
			for _, rq := range c.Requirements {
				reqSurcharge = reqSurcharge.Add(rq.FlatFee)
			}
		}
		// divided once, after all extras are summed
		typeSurcharge = t.BaseFee.Add(distanceCost).Mul(extras).Div(
			decimal.NewFromInt(int64(n)),
		)
	}
	total := decimal.Sum(
		t.BaseFee, distanceCost, weightCost, volumeCost,
		typeSurcharge, reqSurcharge,
	)
	return &model.PriceBreakdown{
		TariffID:              t.ID,
		BaseFee:               t.BaseFee.Round(2),
		DistanceCost:          distanceCost.Round(2),
		WeightCost:            weightCost.Round(2),
		VolumeCost:            volumeCost.Round(2),
		CargoTypeSurcharge:    typeSurcharge.Round(2),
		RequirementsSurcharge: reqSurcharge.Round(2),
		PreliminaryCost:       total.Round(2),
	}
}
