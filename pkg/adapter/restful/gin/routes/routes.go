// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/adapter/config"
	"github.com/momeni/freight/pkg/adapter/restful/gin/availrs"
	"github.com/momeni/freight/pkg/adapter/restful/gin/consolidationsrs"
	"github.com/momeni/freight/pkg/adapter/restful/gin/fleetrs"
	"github.com/momeni/freight/pkg/adapter/restful/gin/pricingrs"
	"github.com/momeni/freight/pkg/adapter/restful/gin/requestsrs"
	"github.com/momeni/freight/pkg/adapter/restful/gin/shipmentsrs"
	"github.com/momeni/freight/pkg/core/repo"
)

// Prefix is the path prefix of all REST APIs.
const Prefix = "/api/fdweb/v1"

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like dispatchuc and each repository package is named like
// shipmentsrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like shipmentsrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
func Register(e *gin.Engine, p repo.Pool, c *config.Config) error {
	ucs, err := c.Usecases.NewUseCases(p)
	if err != nil {
		return fmt.Errorf("creating use cases: %w", err)
	}
	r := e.Group(Prefix)
	requestsrs.Register(r, ucs.Requests)
	pricingrs.Register(r, ucs.Pricing)
	fleetrs.Register(r, ucs.Fleet)
	availrs.Register(r, ucs.Availability)
	shipmentsrs.Register(r, ucs.Dispatch)
	consolidationsrs.Register(r, ucs.Consolidation)
	return nil
}
