// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleetrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

type rawDriverReq struct {
	Name          string `json:"name" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
	Phone         string `json:"phone"`
}

type rawVehicleReq struct {
	PlateNumber string          `json:"plate_number" binding:"required"`
	Model       string          `json:"model"`
	PayloadKg   decimal.Decimal `json:"payload_kg"`
	VolumeM3    decimal.Decimal `json:"volume_m3"`
}

type rawMaintenanceReq struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end"`
	Note  string `json:"note"`
}

type maintenanceReq struct {
	VehicleID uuid.UUID
	Window    model.OpenWindow
	Note      string
}

func (rs *resource) DserRegisterDriverReq(c *gin.Context) *model.Driver {
	req := &rawDriverReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.Driver{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Phone:         req.Phone,
	}
}

func (rs *resource) DserRegisterVehicleReq(c *gin.Context) *model.Vehicle {
	req := &rawVehicleReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	return &model.Vehicle{
		PlateNumber: req.PlateNumber,
		Model:       req.Model,
		PayloadKg:   req.PayloadKg,
		VolumeM3:    req.VolumeM3,
	}
}

func (rs *resource) DserScheduleMaintenanceReq(c *gin.Context) *maintenanceReq {
	id := serdser.DserID(c, "id")
	if id == nil {
		return nil
	}
	req := &rawMaintenanceReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	val := &maintenanceReq{VehicleID: *id, Note: req.Note}
	val.Window.Start = serdser.Time(&errs, "start", req.Start)
	if req.End != "" {
		end := serdser.Time(&errs, "end", req.End)
		val.Window.End = &end
	}
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return val
}
