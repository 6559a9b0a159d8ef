// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"github.com/momeni/freight/pkg/adapter/config/settings"
	"github.com/momeni/freight/pkg/adapter/restful/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/idempotency"
	"github.com/redis/go-redis/v9"
)

// Gin contains the HTTP server and gin engine settings.
type Gin struct {
	Addr     string // listening address, :8080 by default
	Logger   *bool  // Whether to register the access log middleware
	Recovery *bool  // Whether to register the gin.Recovery() middleware
	Metrics  *bool  // Whether to count requests and serve /metrics
}

func (g *Gin) normalize() {
	if g.Addr == "" {
		g.Addr = ":8080"
	}
	settings.Nil2Zero(&g.Logger)
	settings.Nil2Zero(&g.Recovery)
	settings.Nil2Zero(&g.Metrics)
}

// NewEngine instantiates a gin engine with the enabled middlewares.
// If rdb is not nil, the idempotency middleware is registered too,
// keeping the responses for the ttl duration.
func (g Gin) NewEngine(rdb redis.UniversalClient, ttl settings.Duration) *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 4)
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Metrics {
		middlewares = append(middlewares, gin.Metrics())
	}
	if rdb != nil {
		middlewares = append(
			middlewares, idempotency.Middleware(rdb, ttl.Std()),
		)
	}
	e := gin.New(middlewares...)
	if *g.Metrics {
		e.GET("/metrics", gin.MetricsHandler())
	}
	return e
}
