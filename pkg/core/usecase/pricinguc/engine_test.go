// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pricinguc_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/usecase/pricinguc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tariff() *model.Tariff {
	return &model.Tariff{
		ID:        uuid.New(),
		BaseFee:   dec("5000"),
		CostPerKm: dec("45"),
		CostPerKg: dec("3.5"),
		CostPerM3: dec("150"),
		Active:    true,
	}
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal, name string) {
	t.Helper()
	assert.True(
		t, dec(expected).Equal(actual),
		"%s: expected %s, got %s", name, expected, actual,
	)
}

func TestPriceSingleStandardCargo(t *testing.T) {
	r := &model.Request{
		DistanceKm: dec("700"),
		Cargo: []model.Cargo{{
			WeightKg: dec("500"),
			VolumeM3: dec("2.5"),
			Type:     model.CargoType{Multiplier: dec("1.0")},
		}},
	}
	tf := tariff()
	b := pricinguc.Price(tf, r)
	assertDec(t, "5000", b.BaseFee, "base")
	assertDec(t, "31500", b.DistanceCost, "distance")
	assertDec(t, "1750", b.WeightCost, "weight")
	assertDec(t, "375", b.VolumeCost, "volume")
	assertDec(t, "0", b.CargoTypeSurcharge, "type surcharge")
	assertDec(t, "0", b.RequirementsSurcharge, "requirements")
	assertDec(t, "38625.00", b.PreliminaryCost, "total")
	assert.Equal(t, "38625.00", b.PreliminaryCost.StringFixed(2))
	assert.Equal(t, tf.ID, b.TariffID)
}

func TestPriceSurcharges(t *testing.T) {
	fridge := model.Requirement{FlatFee: dec("120.50")}
	escort := model.Requirement{FlatFee: dec("80")}
	r := &model.Request{
		DistanceKm: dec("100"),
		Cargo: []model.Cargo{
			{
				WeightKg:     dec("100"),
				VolumeM3:     dec("1"),
				Type:         model.CargoType{Multiplier: dec("1.5")},
				Requirements: []model.Requirement{fridge, escort},
			},
			{
				WeightKg:     dec("200"),
				VolumeM3:     dec("2"),
				Type:         model.CargoType{Multiplier: dec("1")},
				Requirements: []model.Requirement{fridge},
			},
			{
				WeightKg: dec("0"),
				VolumeM3: dec("0"),
				Type:     model.CargoType{Multiplier: dec("2")},
			},
		},
	}
	b := pricinguc.Price(tariff(), r)
	// portion = (5000 + 4500) / 3; surcharge = portion * (0.5 + 0 + 1)
	assertDec(t, "4750", b.CargoTypeSurcharge, "type surcharge")
	assertDec(t, "321", b.RequirementsSurcharge, "requirements")
	assertDec(t, "1050", b.WeightCost, "weight")
	assertDec(t, "450", b.VolumeCost, "volume")
	assertDec(t, "16071", b.PreliminaryCost, "total")
}

func TestPriceEmptyCargo(t *testing.T) {
	r := &model.Request{DistanceKm: dec("10")}
	b := pricinguc.Price(tariff(), r)
	assertDec(t, "5450", b.PreliminaryCost, "base + distance")
	assertDec(t, "0", b.CargoTypeSurcharge, "type surcharge")
}

func TestPriceRoundsOnlyTheBreakdown(t *testing.T) {
	tf := tariff()
	tf.BaseFee = dec("0.004")
	tf.CostPerKm = dec("0")
	tf.CostPerKg = dec("0.004")
	tf.CostPerM3 = dec("0.004")
	r := &model.Request{Cargo: []model.Cargo{{
		WeightKg: dec("1"),
		VolumeM3: dec("1"),
		Type:     model.CargoType{Multiplier: dec("1")},
	}}}
	b := pricinguc.Price(tf, r)
	assertDec(t, "0", b.BaseFee, "base")
	assertDec(t, "0", b.WeightCost, "weight")
	assertDec(t, "0", b.VolumeCost, "volume")
	// 0.004 * 3 is accumulated before rounding
	assertDec(t, "0.01", b.PreliminaryCost, "total")
}

func TestPriceSplitsTheTypeSurchargeOnce(t *testing.T) {
	tf := &model.Tariff{
		BaseFee:   dec("0.01"),
		CostPerKm: dec("0"),
		CostPerKg: dec("0"),
		CostPerM3: dec("0"),
	}
	item := model.Cargo{
		WeightKg: dec("1"),
		VolumeM3: dec("1"),
		Type:     model.CargoType{Multiplier: dec("1.5")},
	}
	r := &model.Request{Cargo: []model.Cargo{item, item, item}}
	b := pricinguc.Price(tf, r)
	// 0.01 + 0.01 * 1.5 / 3 is exactly 0.015
	assertDec(t, "0.01", b.CargoTypeSurcharge, "type surcharge")
	assertDec(t, "0.02", b.PreliminaryCost, "total")
}

func TestPriceIsDeterministic(t *testing.T) {
	r := &model.Request{
		DistanceKm: dec("333.3"),
		Cargo: []model.Cargo{
			{WeightKg: dec("1.1"), VolumeM3: dec("0.7"), Type: model.CargoType{Multiplier: dec("1.3")}},
			{WeightKg: dec("2.9"), VolumeM3: dec("0.1"), Type: model.CargoType{Multiplier: dec("1.7")}},
			{WeightKg: dec("9"), VolumeM3: dec("3"), Type: model.CargoType{Multiplier: dec("1")}},
		},
	}
	tf := tariff()
	first := pricinguc.Price(tf, r)
	for i := 0; i < 10; i++ {
		again := pricinguc.Price(tf, r)
		require.Equal(t, first.PreliminaryCost.String(), again.PreliminaryCost.String())
		require.Equal(t, first.CargoTypeSurcharge.String(), again.CargoTypeSurcharge.String())
	}
}
