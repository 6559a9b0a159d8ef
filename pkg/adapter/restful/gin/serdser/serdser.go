// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization and deserialization
// helpers which are shared by the resource packages.
// Deserialization problems are reported as a map from the field names
// to their error messages, while the use case errors are reported as
// a JSON object with the error kind, a detail message, and the id of
// the conflicting entity (if any).
package serdser

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

// ErrResp is the body of the error responses which are caused by the
// use case errors.
type ErrResp struct {
	Kind          cerr.Kind  `json:"kind,omitempty"`
	Detail        string     `json:"detail"`
	ConflictingID *uuid.UUID `json:"conflicting_id,omitempty"`
}

// Bind deserializes the c request into req using the b binding and
// validates it. In case of errors, a proper response is written and
// false is returned, so callers should just return.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return report(c, c.ShouldBindWith(req, b))
}

// BindURI is like Bind, but reads the path parameters.
func BindURI(c *gin.Context, req any) bool {
	return report(c, c.ShouldBindUri(req))
}

func report(c *gin.Context, err error) bool {
	var verrs validator.ValidationErrors
	var ierr *validator.InvalidValidationError
	switch {
	case err == nil:
		return true
	case errors.As(err, &ierr):
		c.JSON(http.StatusInternalServerError, ErrResp{
			Detail: ierr.Error(),
		})
	case errors.As(err, &verrs):
		var nameToErrs map[string][]string
		for _, ferr := range verrs {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		c.JSON(http.StatusBadRequest, ErrResp{
			Kind:   cerr.KindValidation,
			Detail: err.Error(),
		})
	}
	return false
}

// AddErr appends msgs to the name field messages of errs, allocating
// the errs map if it is nil.
func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	if elist, ok := (*errs)[name]; !ok {
		(*errs)[name] = msgs
	} else {
		(*errs)[name] = append(elist, msgs...)
	}
}

// Assert calls AddErr if ok is false and returns ok.
func Assert(errs *map[string][]string, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// UUID parses s into the returned UUID. If s is not a valid UUID, an
// error message is added for the name field and uuid.Nil is returned.
func UUID(errs *map[string][]string, name, s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		AddErr(errs, name, "The "+name+" is not a valid UUID.")
		return uuid.Nil
	}
	return id
}

// UUIDs parses all ss items like UUID.
func UUIDs(errs *map[string][]string, name string, ss []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		ids = append(ids, UUID(errs, name, s))
	}
	return ids
}

// Decimal parses s as a decimal number.
func Decimal(errs *map[string][]string, name, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		AddErr(errs, name, "The "+name+" is not a decimal number.")
		return decimal.Zero
	}
	return d
}

// Time parses s as an RFC 3339 timestamp.
func Time(errs *map[string][]string, name, s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		AddErr(errs, name, "The "+name+" is not an RFC 3339 timestamp.")
		return time.Time{}
	}
	return t.UTC()
}

// RespondErrs writes the errs map (if non-nil) as a bad request
// response and reports if errs was empty.
func RespondErrs(c *gin.Context, errs map[string][]string) bool {
	if errs == nil {
		return true
	}
	c.JSON(http.StatusBadRequest, errs)
	return false
}

// SerErr writes err as the response. The cerr.Error kinds determine
// the status code, and a wrapped model.ConflictError provides the id
// of the conflicting shipment or maintenance window. Other errors are
// reported as internal server errors.
func SerErr(c *gin.Context, err error) {
	_ = c.Error(err)
	var ce *cerr.Error
	if !errors.As(err, &ce) {
		c.JSON(http.StatusInternalServerError, ErrResp{
			Detail: err.Error(),
		})
		return
	}
	resp := ErrResp{Kind: ce.Kind, Detail: ce.Err.Error()}
	var conflict *model.ConflictError
	if errors.As(err, &conflict) && conflict.Blocker != model.BlockedByFlag {
		id := conflict.BlockerID
		resp.ConflictingID = &id
	}
	c.JSON(ce.HTTPStatusCode, resp)
}

// DserID parses the name path parameter as a UUID. In case of errors,
// a bad request response is written and nil is returned.
func DserID(c *gin.Context, name string) *uuid.UUID {
	var errs map[string][]string
	id := UUID(&errs, name, c.Param(name))
	if !RespondErrs(c, errs) {
		return nil
	}
	return &id
}
