// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package idempotency provides a gin middleware which makes POST,
// PUT, and PATCH requests carrying an Idempotency-Key header safe to
// retry. The first response of each key is kept in redis and replayed
// for the later requests with the same key, while concurrent requests
// with an in-progress key are rejected.
package idempotency

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/redis/go-redis/v9"
)

// Header names which are read or written by the middleware.
const (
	KeyHeader = "Idempotency-Key"
	HitHeader = "X-Idempotency-Hit"
)

const (
	keyPrefix  = "fdweb:idempotency:"
	processing = "PROCESSING"
	lockTTL    = 10 * time.Second
)

type stored struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Middleware returns the idempotency middleware which keeps completed
// responses for ttl. Server errors are not kept, so such requests may
// be retried with the same key. If redis is not reachable, requests
// are served without the idempotency guarantee.
func Middleware(rdb redis.UniversalClient, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}
		key := c.GetHeader(KeyHeader)
		if key == "" {
			c.Next()
			return
		}
		rkey := keyPrefix + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		val, err := rdb.Get(c, rkey).Result()
		switch {
		case err == nil:
			replay(c, val)
			return
		case !errors.Is(err, redis.Nil):
			log.Warn(c, "idempotency store is not available", log.Err("err", err))
			c.Next()
			return
		}
		acquired, err := rdb.SetNX(c, rkey, processing, lockTTL).Result()
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"kind":   "conflict",
				"detail": "a request with the same idempotency key is in progress",
			})
			return
		}
		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			rdb.Del(c, rkey)
			return
		}
		b, err := json.Marshal(stored{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err != nil {
			rdb.Del(c, rkey)
			return
		}
		if err := rdb.Set(c, rkey, b, ttl).Err(); err != nil {
			log.Warn(c, "failed to store idempotent response", log.Err("err", err))
		}
	}
}

func replay(c *gin.Context, val string) {
	if val == processing {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"kind":   "conflict",
			"detail": "a request with the same idempotency key is in progress",
		})
		return
	}
	var s stored
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"detail": "corrupted idempotent response",
		})
		return
	}
	c.Header(HitHeader, "true")
	c.Data(s.Status, s.ContentType, s.Body)
	c.Abort()
}
