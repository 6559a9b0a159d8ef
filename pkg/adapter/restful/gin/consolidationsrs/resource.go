// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package consolidationsrs realizes the consolidation voyages
// resource, allowing the LTL REST APIs to be accepted and delegated
// to the consolidation use cases.
package consolidationsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/usecase/consolidationuc"
)

type resource struct {
	consolidation *consolidationuc.UseCase
}

// Register instantiates a resource adapting the consolidation use
// case instance with the relevant REST APIs including:
//  1. POST request to /consolidations in order to create a voyage,
//  2. GET request to /consolidations/:lid in order to read a voyage,
//  3. PATCH request to /consolidations/:lid/members in order to add
//     or remove member shipments,
//  4. PATCH request to /consolidations/:lid in order to change the
//     voyage status.
func Register(r *gin.RouterGroup, consolidation *consolidationuc.UseCase) {
	rs := &resource{consolidation: consolidation}
	r.POST("consolidations", rs.CreateConsolidation)
	r.GET("consolidations/:lid", rs.GetConsolidation)
	r.PATCH("consolidations/:lid/members", rs.UpdateMembers)
	r.PATCH("consolidations/:lid", rs.UpdateConsolidation)
}

func (rs *resource) CreateConsolidation(c *gin.Context) {
	req := rs.DserCreateConsolidationReq(c)
	if req == nil {
		return
	}
	l, err := rs.consolidation.Create(c, *req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (rs *resource) GetConsolidation(c *gin.Context) {
	id := serdser.DserID(c, "lid")
	if id == nil {
		return
	}
	l, err := rs.consolidation.Get(c, *id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (rs *resource) UpdateMembers(c *gin.Context) {
	req := rs.DserUpdateMembersReq(c)
	if req == nil {
		return
	}
	l, err := rs.consolidation.UpdateMembers(c, req.ID, req.Add, req.Remove)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (rs *resource) UpdateConsolidation(c *gin.Context) {
	req := rs.DserUpdateConsolidationReq(c)
	if req == nil {
		return
	}
	l, err := rs.consolidation.UpdateStatus(c, req.ID, req.Status)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}
