// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package availrs realizes the availability resource which reports
// whether a driver or vehicle is free during a time window.
package availrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/usecase/availuc"
)

type resource struct {
	avail *availuc.UseCase
}

// Register instantiates a resource adapting the availability use case
// with the GET request to /availability. The query parameters are
// kind (driver or vehicle), id, start, and end. A free resource gives
// a 200 response, while a busy resource gives a 409 response with the
// id of the conflicting shipment or maintenance window.
func Register(r *gin.RouterGroup, avail *availuc.UseCase) {
	rs := &resource{avail: avail}
	r.GET("availability", rs.CheckAvailability)
}

func (rs *resource) CheckAvailability(c *gin.Context) {
	req := rs.DserCheckAvailabilityReq(c)
	if req == nil {
		return
	}
	if err := rs.avail.Check(c, req.Kind, req.ID, req.Window); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":      req.Kind.String(),
		"id":        req.ID,
		"window":    req.Window,
		"available": true,
	})
}
