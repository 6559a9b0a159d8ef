// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fleetrs realizes the drivers and vehicles resources.
package fleetrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/usecase/fleetuc"
)

type resource struct {
	fleet *fleetuc.UseCase
}

// Register instantiates a resource adapting the fleet use case
// instance with the relevant REST APIs including:
//  1. POST request to /drivers and GET request to /drivers/:id,
//  2. POST request to /vehicles and GET request to /vehicles/:id,
//  3. POST request to /vehicles/:id/maintenance in order to schedule
//     a maintenance window for a vehicle.
func Register(r *gin.RouterGroup, fleet *fleetuc.UseCase) {
	rs := &resource{fleet: fleet}
	r.POST("drivers", rs.RegisterDriver)
	r.GET("drivers/:id", rs.GetDriver)
	r.POST("vehicles", rs.RegisterVehicle)
	r.GET("vehicles/:id", rs.GetVehicle)
	r.POST("vehicles/:id/maintenance", rs.ScheduleMaintenance)
}

func (rs *resource) RegisterDriver(c *gin.Context) {
	req := rs.DserRegisterDriverReq(c)
	if req == nil {
		return
	}
	d, err := rs.fleet.RegisterDriver(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (rs *resource) GetDriver(c *gin.Context) {
	id := serdser.DserID(c, "id")
	if id == nil {
		return
	}
	d, err := rs.fleet.GetDriver(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (rs *resource) RegisterVehicle(c *gin.Context) {
	req := rs.DserRegisterVehicleReq(c)
	if req == nil {
		return
	}
	v, err := rs.fleet.RegisterVehicle(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (rs *resource) GetVehicle(c *gin.Context) {
	id := serdser.DserID(c, "id")
	if id == nil {
		return
	}
	v, err := rs.fleet.GetVehicle(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (rs *resource) ScheduleMaintenance(c *gin.Context) {
	req := rs.DserScheduleMaintenanceReq(c)
	if req == nil {
		return
	}
	mw, err := rs.fleet.ScheduleMaintenance(
		c, req.VehicleID, req.Window, req.Note,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, mw)
}
