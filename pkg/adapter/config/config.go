// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the fdweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// The parsed and validated configurations are passed to their ultimate
// components as a series of individual params (for the mandatory
// items) and a series of functional options (for the optional items).
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/momeni/freight/pkg/core/repo"
	"gopkg.in/yaml.v3"
)

// Config contains all configuration settings of the fdweb.
type Config struct {
	Database Database // PostgreSQL database connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Log      Log      // Structured logging settings
	Redis    Redis    // Optional idempotency store settings
	Kafka    Kafka    // Optional event publication settings
	Usecases Usecases // Configuration settings for supported use cases
}

// LoadDotEnv loads the environment variables from the given .env
// files (or .env in the current directory if no path is given).
// Variables which are set already are not overridden and missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		err := godotenv.Load(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %q: %w", p, err)
		}
	}
	return nil
}

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes data as a yaml document, rejecting unknown fields,
// and then applies the environment overrides and validates it.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	c := &Config{}
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	c.applyEnv()
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// Environment variables which override the config file settings.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvRedisAddr    = "REDIS_ADDR"
	EnvKafkaBrokers = "KAFKA_BROKERS"
)

func (c *Config) applyEnv() {
	if u := os.Getenv(EnvDatabaseURL); u != "" {
		c.Database.URL = u
	}
	if a := os.Getenv(EnvRedisAddr); a != "" {
		c.Redis.Addr = a
	}
	if b := os.Getenv(EnvKafkaBrokers); b != "" {
		c.Kafka.Brokers = splitList(b)
	}
}

// ValidateAndNormalize validates the configuration settings and
// fills the missing optional settings with their default values.
func (c *Config) ValidateAndNormalize() error {
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	c.Gin.normalize()
	if err := c.Log.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating log settings: %w", err)
	}
	if err := c.Redis.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating redis settings: %w", err)
	}
	if err := c.Kafka.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating kafka settings: %w", err)
	}
	if err := c.Usecases.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating use cases settings: %w", err)
	}
	return nil
}

// ConnectionPool creates a connection pool for the r role.
// It makes Config implement the initdbuc.Settings interface.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"connecting to %s:%d/%s as %s: %w",
			c.Database.Host, c.Database.Port, c.Database.Name, r, err,
		)
	}
	return p, nil
}

// NewSchemaRepo instantiates a schema repository.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// RenewPasswords generates new passwords for roles, see
// Database.RenewPasswords for details.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}
