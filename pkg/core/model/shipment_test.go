// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func cargo(weight, volume string) model.Cargo {
	return model.Cargo{
		WeightKg: decimal.RequireFromString(weight),
		VolumeM3: decimal.RequireFromString(volume),
	}
}

func TestConsolidate(t *testing.T) {
	s1 := model.Member{Cargo: []model.Cargo{cargo("200", "2"), cargo("300", "3")}}
	s2 := model.Member{Cargo: []model.Cargo{cargo("300", "8")}}

	l := model.Consolidate([]model.Member{s1, s2})
	assert.True(t, decimal.NewFromInt(800).Equal(l.WeightKg), l.WeightKg)
	assert.True(t, decimal.NewFromInt(13).Equal(l.VolumeM3), l.VolumeM3)

	l = model.Consolidate([]model.Member{s2})
	assert.True(t, decimal.NewFromInt(300).Equal(l.WeightKg), l.WeightKg)
	assert.True(t, decimal.NewFromInt(8).Equal(l.VolumeM3), l.VolumeM3)

	l = model.Consolidate(nil)
	assert.True(t, l.WeightKg.IsZero())
	assert.True(t, l.VolumeM3.IsZero())
}

func TestVehicleFits(t *testing.T) {
	v := &model.Vehicle{
		PayloadKg: decimal.NewFromInt(1000),
		VolumeM3:  decimal.NewFromInt(10),
	}
	assert.True(t, v.Fits(model.Load{}.Add(cargo("1000", "10"))))
	assert.False(t, v.Fits(model.Load{}.Add(cargo("1000.01", "1"))))
	assert.False(t, v.Fits(model.Load{}.Add(cargo("1", "10.5"))))
}

func TestRequestValidate(t *testing.T) {
	r := &model.Request{
		PickupDate:   day(1),
		DeliveryDate: day(3),
		DistanceKm:   decimal.NewFromInt(700),
		Cargo:        []model.Cargo{cargo("500", "2.5")},
	}
	assert.NoError(t, r.Validate())

	r.DistanceKm = decimal.NewFromInt(-1)
	assert.ErrorIs(t, r.Validate(), model.ErrNegativeDistance)
	r.DistanceKm = decimal.Zero

	r.Cargo = append(r.Cargo, cargo("-1", "0"))
	assert.ErrorIs(t, r.Validate(), model.ErrNegativeWeight)
	r.Cargo = r.Cargo[:1]

	r.PickupDate = day(4)
	assert.ErrorIs(t, r.Validate(), model.ErrInvertedWindow)
}
