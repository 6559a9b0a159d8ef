// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package consolidationsrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/usecase/consolidationuc"
)

type rawConsolidationReq struct {
	VoyageCode  string   `json:"voyage_code" binding:"required"`
	Departure   string   `json:"departure" binding:"required"`
	Arrival     string   `json:"arrival" binding:"required"`
	ShipmentIDs []string `json:"shipment_ids"`
}

type rawMembersReq struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

type membersReq struct {
	ID     uuid.UUID
	Add    []uuid.UUID
	Remove []uuid.UUID
}

type rawConsolidationUpdateReq struct {
	Status string `json:"status" binding:"required"`
}

type consolidationUpdateReq struct {
	ID     uuid.UUID
	Status model.LtlStatus
}

func (rs *resource) DserCreateConsolidationReq(
	c *gin.Context,
) *consolidationuc.CreateParams {
	req := &rawConsolidationReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	val := &consolidationuc.CreateParams{
		VoyageCode:  req.VoyageCode,
		Departure:   serdser.Time(&errs, "departure", req.Departure),
		Arrival:     serdser.Time(&errs, "arrival", req.Arrival),
		ShipmentIDs: serdser.UUIDs(&errs, "shipment_ids", req.ShipmentIDs),
	}
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return val
}

func (rs *resource) DserUpdateMembersReq(c *gin.Context) *membersReq {
	id := serdser.DserID(c, "lid")
	if id == nil {
		return nil
	}
	req := &rawMembersReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	serdser.Assert(
		&errs, len(req.Add)+len(req.Remove) > 0, "add/remove",
		"At least one shipment must be added or removed.",
	)
	val := &membersReq{
		ID:     *id,
		Add:    serdser.UUIDs(&errs, "add", req.Add),
		Remove: serdser.UUIDs(&errs, "remove", req.Remove),
	}
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return val
}

func (rs *resource) DserUpdateConsolidationReq(
	c *gin.Context,
) *consolidationUpdateReq {
	id := serdser.DserID(c, "lid")
	if id == nil {
		return nil
	}
	req := &rawConsolidationUpdateReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	st, err := model.ParseLtlStatus(req.Status)
	serdser.Assert(&errs, err == nil, "status", "Unknown voyage status.")
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return &consolidationUpdateReq{ID: *id, Status: st}
}
