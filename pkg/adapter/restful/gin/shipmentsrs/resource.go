// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package shipmentsrs realizes the shipments resource, allowing the
// allocation and lifecycle REST APIs to be accepted and delegated to
// the dispatch use cases.
package shipmentsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/usecase/dispatchuc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var allocations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fdweb_allocations_total",
		Help: "Shipment allocation attempts by their outcome.",
	},
	[]string{"result"},
)

type resource struct {
	dispatch *dispatchuc.UseCase
}

// Register instantiates a resource adapting the dispatch use case
// instance with the relevant REST APIs including:
//  1. POST request to /shipments in order to allocate a request,
//  2. GET request to /shipments/:sid in order to read a shipment,
//  3. PATCH request to /shipments/:sid in order to change its status,
//  4. DELETE request to /shipments/:sid in order to soft-delete it.
func Register(r *gin.RouterGroup, dispatch *dispatchuc.UseCase) {
	rs := &resource{dispatch: dispatch}
	r.POST("shipments", rs.AllocateShipment)
	r.GET("shipments/:sid", rs.GetShipment)
	r.PATCH("shipments/:sid", rs.UpdateShipment)
	r.DELETE("shipments/:sid", rs.DeleteShipment)
}

func (rs *resource) AllocateShipment(c *gin.Context) {
	req := rs.DserAllocateReq(c)
	if req == nil {
		return
	}
	s, err := rs.dispatch.Allocate(c, *req)
	allocations.WithLabelValues(result(err)).Inc()
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func result(err error) string {
	if err == nil {
		return "allocated"
	}
	for _, k := range []cerr.Kind{
		cerr.KindConflict, cerr.KindNotFound,
		cerr.KindInvalidTransition, cerr.KindValidation,
	} {
		if cerr.Is(err, k) {
			return string(k)
		}
	}
	return "error"
}

func (rs *resource) GetShipment(c *gin.Context) {
	id := serdser.DserID(c, "sid")
	if id == nil {
		return
	}
	s, err := rs.dispatch.Get(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (rs *resource) UpdateShipment(c *gin.Context) {
	req := rs.DserUpdateShipmentReq(c)
	if req == nil {
		return
	}
	s, err := rs.dispatch.UpdateStatus(c, req.ID, req.Status)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (rs *resource) DeleteShipment(c *gin.Context) {
	id := serdser.DserID(c, "sid")
	if id == nil {
		return
	}
	if err := rs.dispatch.Delete(c, *id); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
