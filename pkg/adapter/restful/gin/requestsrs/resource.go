// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package requestsrs realizes the transport requests resource,
// allowing the request intake REST APIs to be accepted and delegated
// to the requests use cases.
package requestsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/usecase/requestsuc"
)

type resource struct {
	requests *requestsuc.UseCase
}

// Register instantiates a resource adapting the requests use case
// instance with the relevant REST APIs including:
//  1. POST request to /requests in order to create a request,
//  2. GET request to /requests/:rid in order to read a request,
//  3. PATCH request to /requests/:rid in order to change its status.
func Register(r *gin.RouterGroup, requests *requestsuc.UseCase) {
	rs := &resource{requests: requests}
	r.POST("requests", rs.CreateRequest)
	r.GET("requests/:rid", rs.GetRequest)
	r.PATCH("requests/:rid", rs.UpdateRequest)
}

func (rs *resource) CreateRequest(c *gin.Context) {
	req := rs.DserCreateRequestReq(c)
	if req == nil {
		return
	}
	r, err := rs.requests.Create(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (rs *resource) GetRequest(c *gin.Context) {
	id := serdser.DserID(c, "rid")
	if id == nil {
		return
	}
	r, err := rs.requests.Get(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (rs *resource) UpdateRequest(c *gin.Context) {
	req := rs.DserUpdateRequestReq(c)
	if req == nil {
		return
	}
	r, err := rs.requests.UpdateStatus(c, req.ID, req.Status)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
