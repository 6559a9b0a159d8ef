// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package shipmentsrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/usecase/dispatchuc"
	"github.com/shopspring/decimal"
)

type rawAllocateReq struct {
	RequestID       string              `json:"request_id" binding:"required"`
	DriverID        string              `json:"driver_id" binding:"required"`
	VehicleID       string              `json:"vehicle_id" binding:"required"`
	PlannedPickup   string              `json:"planned_pickup" binding:"required"`
	PlannedDelivery string              `json:"planned_delivery" binding:"required"`
	FinalCost       decimal.NullDecimal `json:"final_cost"`
}

type rawShipmentUpdateReq struct {
	Status string `json:"status" binding:"required"`
}

type shipmentUpdateReq struct {
	ID     uuid.UUID
	Status model.ShipmentStatus
}

func (rs *resource) DserAllocateReq(c *gin.Context) *dispatchuc.AllocateParams {
	req := &rawAllocateReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	val := &dispatchuc.AllocateParams{
		RequestID: serdser.UUID(&errs, "request_id", req.RequestID),
		DriverID:  serdser.UUID(&errs, "driver_id", req.DriverID),
		VehicleID: serdser.UUID(&errs, "vehicle_id", req.VehicleID),
		Planned: model.Window{
			Start: serdser.Time(&errs, "planned_pickup", req.PlannedPickup),
			End:   serdser.Time(&errs, "planned_delivery", req.PlannedDelivery),
		},
	}
	if req.FinalCost.Valid {
		cost := req.FinalCost.Decimal
		val.FinalCost = &cost
	}
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return val
}

func (rs *resource) DserUpdateShipmentReq(c *gin.Context) *shipmentUpdateReq {
	id := serdser.DserID(c, "sid")
	if id == nil {
		return nil
	}
	req := &rawShipmentUpdateReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	st, err := model.ParseShipmentStatus(req.Status)
	serdser.Assert(&errs, err == nil, "status", "Unknown shipment status.")
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return &shipmentUpdateReq{ID: *id, Status: st}
}
