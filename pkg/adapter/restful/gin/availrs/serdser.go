// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package availrs

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/freight/pkg/core/model"
)

type rawAvailabilityReq struct {
	Kind  string `form:"kind" binding:"required,oneof=driver vehicle"`
	ID    string `form:"id" binding:"required"`
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}

type availabilityReq struct {
	Kind   model.ResourceKind
	ID     uuid.UUID
	Window model.Window
}

func (rs *resource) DserCheckAvailabilityReq(c *gin.Context) *availabilityReq {
	req := &rawAvailabilityReq{}
	if ok := serdser.Bind(c, req, binding.Query); !ok {
		return nil
	}
	var errs map[string][]string
	val := &availabilityReq{}
	var err error
	val.Kind, err = model.ParseResourceKind(req.Kind)
	serdser.Assert(&errs, err == nil, "kind", "Unknown resource kind.")
	val.ID = serdser.UUID(&errs, "id", req.ID)
	val.Window.Start = serdser.Time(&errs, "start", req.Start)
	val.Window.End = serdser.Time(&errs, "end", req.End)
	if !serdser.RespondErrs(c, errs) {
		return nil
	}
	return val
}
