// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pricingrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

type rawTariffReq struct {
	Name      string          `json:"name" binding:"required"`
	BaseFee   decimal.Decimal `json:"base_fee"`
	CostPerKm decimal.Decimal `json:"cost_per_km"`
	CostPerKg decimal.Decimal `json:"cost_per_kg"`
	CostPerM3 decimal.Decimal `json:"cost_per_m3"`
}

type rawCargoTypeReq struct {
	Name       string          `json:"name" binding:"required"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type rawRequirementReq struct {
	Name    string          `json:"name" binding:"required"`
	FlatFee decimal.Decimal `json:"flat_fee"`
}

func (rs *resource) DserQuoteReq(c *gin.Context) *model.Request {
	req := &serdser.RawRequest{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	r := req.ToModel(&errs)
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return r
}

func (rs *resource) DserCreateTariffReq(c *gin.Context) *model.Tariff {
	req := &rawTariffReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.Tariff{
		Name:      req.Name,
		BaseFee:   req.BaseFee,
		CostPerKm: req.CostPerKm,
		CostPerKg: req.CostPerKg,
		CostPerM3: req.CostPerM3,
	}
}

func (rs *resource) DserCreateCargoTypeReq(c *gin.Context) *model.CargoType {
	req := &rawCargoTypeReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.CargoType{Name: req.Name, Multiplier: req.Multiplier}
}

func (rs *resource) DserCreateRequirementReq(c *gin.Context) *model.Requirement {
	req := &rawRequirementReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.Requirement{Name: req.Name, FlatFee: req.FlatFee}
}
