// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serdser

import (
	"strconv"

	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

// RawRequest is the body of the requests which carry a transport
// request draft, i.e., the request creation and the price quotes.
type RawRequest struct {
	CompanyID       string          `json:"company_id" binding:"omitempty,uuid"`
	CreatorID       string          `json:"creator_id" binding:"omitempty,uuid"`
	PickupAddress   string          `json:"pickup_address"`
	DeliveryAddress string          `json:"delivery_address"`
	PickupDate      string          `json:"pickup_date" binding:"required"`
	DeliveryDate    string          `json:"delivery_date" binding:"required"`
	DistanceKm      decimal.Decimal `json:"distance_km"`
	Cargo           []RawCargo      `json:"cargo" binding:"dive"`
}

// RawCargo is one cargo item of a RawRequest.
type RawCargo struct {
	Name           string          `json:"name" binding:"required"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	VolumeM3       decimal.Decimal `json:"volume_m3"`
	CargoTypeID    string          `json:"cargo_type_id" binding:"required,uuid"`
	RequirementIDs []string        `json:"requirement_ids" binding:"dive,uuid"`
}

// ToModel converts rr to a request whose cargo items refer to their
// cargo type and requirements by id. Parsing problems are added to
// errs and a nil request is returned.
func (rr *RawRequest) ToModel(errs *map[string][]string) *model.Request {
	r := &model.Request{
		PickupAddress:   rr.PickupAddress,
		DeliveryAddress: rr.DeliveryAddress,
		PickupDate:      Time(errs, "pickup_date", rr.PickupDate),
		DeliveryDate:    Time(errs, "delivery_date", rr.DeliveryDate),
		DistanceKm:      rr.DistanceKm,
	}
	if rr.CompanyID != "" {
		r.CompanyID = UUID(errs, "company_id", rr.CompanyID)
	}
	if rr.CreatorID != "" {
		r.CreatorID = UUID(errs, "creator_id", rr.CreatorID)
	}
	r.Cargo = make([]model.Cargo, 0, len(rr.Cargo))
	for i, rc := range rr.Cargo {
		prefix := "cargo[" + strconv.Itoa(i) + "]."
		c := model.Cargo{
			Name:     rc.Name,
			WeightKg: rc.WeightKg,
			VolumeM3: rc.VolumeM3,
			Type: model.CargoType{
				ID: UUID(errs, prefix+"cargo_type_id", rc.CargoTypeID),
			},
		}
		for _, id := range UUIDs(errs, prefix+"requirement_ids", rc.RequirementIDs) {
			c.Requirements = append(c.Requirements, model.Requirement{ID: id})
		}
		r.Cargo = append(r.Cargo, c)
	}
	if *errs != nil {
		return nil
	}
	return r
}
