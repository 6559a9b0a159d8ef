// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pricingrs realizes the pricing resources, i.e., the quotes,
// request pricing, and the tariff and cargo catalog administration.
package pricingrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/usecase/pricinguc"
)

type resource struct {
	pricing *pricinguc.UseCase
}

// Register instantiates a resource adapting the pricing use case
// instance with the relevant REST APIs including:
//  1. POST request to /quotes in order to price a request draft
//     without storing anything,
//  2. POST request to /requests/:rid/price in order to price a stored
//     request and record its preliminary cost,
//  3. POST request to /tariffs, PUT request to /tariffs/:tid/active,
//     and GET request to /tariffs/active for managing the tariffs,
//  4. POST requests to /cargo-types and /requirements for extending
//     the cargo catalog.
func Register(r *gin.RouterGroup, pricing *pricinguc.UseCase) {
	rs := &resource{pricing: pricing}
	r.POST("quotes", rs.Quote)
	r.POST("requests/:rid/price", rs.PriceRequest)
	r.POST("tariffs", rs.CreateTariff)
	r.PUT("tariffs/:tid/active", rs.ActivateTariff)
	r.GET("tariffs/active", rs.ActiveTariff)
	r.POST("cargo-types", rs.CreateCargoType)
	r.POST("requirements", rs.CreateRequirement)
}

func (rs *resource) Quote(c *gin.Context) {
	req := rs.DserQuoteReq(c)
	if req == nil {
		return
	}
	b, err := rs.pricing.Quote(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) PriceRequest(c *gin.Context) {
	id := serdser.DserID(c, "rid")
	if id == nil {
		return
	}
	b, err := rs.pricing.PriceRequest(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rs *resource) CreateTariff(c *gin.Context) {
	req := rs.DserCreateTariffReq(c)
	if req == nil {
		return
	}
	t, err := rs.pricing.CreateTariff(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (rs *resource) ActivateTariff(c *gin.Context) {
	id := serdser.DserID(c, "tid")
	if id == nil {
		return
	}
	t, err := rs.pricing.ActivateTariff(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (rs *resource) ActiveTariff(c *gin.Context) {
	t, err := rs.pricing.ActiveTariff(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (rs *resource) CreateCargoType(c *gin.Context) {
	req := rs.DserCreateCargoTypeReq(c)
	if req == nil {
		return
	}
	ct, err := rs.pricing.CreateCargoType(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, ct)
}

func (rs *resource) CreateRequirement(c *gin.Context) {
	req := rs.DserCreateRequirementReq(c)
	if req == nil {
		return
	}
	rq, err := rs.pricing.CreateRequirement(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rq)
}
