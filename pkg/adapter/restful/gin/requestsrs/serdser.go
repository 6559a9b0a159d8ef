// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package requestsrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/model"
)

type rawRequestUpdateReq struct {
	Status string `json:"status" binding:"required,oneof=new processing completed rejected"`
}

type requestUpdateReq struct {
	ID     uuid.UUID
	Status model.RequestStatus
}

func (rs *resource) DserCreateRequestReq(c *gin.Context) *model.Request {
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

func (rs *resource) DserUpdateRequestReq(c *gin.Context) *requestUpdateReq {
	id := serdser.DserID(c, "rid")
	if id == nil {
		return nil
	}
	req := &rawRequestUpdateReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	var errs map[string][]string
	st, err := model.ParseRequestStatus(req.Status)
	serdser.Assert(&errs, err == nil, "status", "Unknown request status.")
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return &requestUpdateReq{ID: *id, Status: st}
}
