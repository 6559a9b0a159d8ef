// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine and provides the middlewares
// which are shared by all resources: a structured access log, panic
// recovery, and prometheus metrics. The resource packages (named like
// requestsrs) adapt the use cases to REST APIs and are registered by
// the routes sub-package.
package gin

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// New creates a gin engine without any default middleware and makes
// it use the given middlewares in order.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger returns a middleware which logs one record per request with
// the core log helpers. Server errors are logged at the error level
// and client errors at the warning level.
func Logger() HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error(c, "request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn(c, "request rejected", attrs...)
		default:
			log.Info(c, "request served", attrs...)
		}
	}
}

// Recovery returns the gin recovery middleware.
func Recovery() HandlerFunc {
	return gin.Recovery()
}

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fdweb_http_requests_total",
		Help: "The total number of served HTTP requests",
	}, []string{"method", "route", "status"})
	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fdweb_http_request_duration_seconds",
		Help:    "The HTTP requests latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Metrics returns a middleware which counts the requests by their
// route template and status code and observes their latency.
func Metrics() HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpLatency.WithLabelValues(c.Request.Method, route).Observe(
			time.Since(start).Seconds(),
		)
	}
}

// MetricsHandler serves the prometheus registry contents.
func MetricsHandler() HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
