// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/freight/pkg/adapter/config/settings"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/freight/pkg/adapter/hash/scram"
	"github.com/momeni/freight/pkg/core/log"
	"github.com/momeni/freight/pkg/core/repo"
	scrami "github.com/momeni/freight/pkg/core/scram"
)

// Database contains the database related configuration settings.
type Database struct {
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like fdweb
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix is appended to the admin and normal role names, so
	// one database may host more than one deployment.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod is the SCRAM mechanism which is used for hashing
	// the roles passwords, scram-sha-256 (default) or scram-sha-1.
	AuthMethod string `yaml:"auth-method,omitempty"`

	// PasswordIters is the SCRAM iterations count, at least 4096.
	PasswordIters *int `yaml:"password-iters,omitempty"`

	// URL overrides the pgpass based connection of the normal role.
	// It is taken from the DATABASE_URL environment variable.
	URL string `yaml:"-"`

	hasher scrami.Hasher
}

// ConnectionPool creates a connection pool for the r role.
// The URL field (if set) is used for the normal role. Otherwise,
// the password is read from the .pgpass file in the PassDir. If it
// fails, the .pgpass.new file (as created by RenewPasswords) is tried
// and if it works, it is moved over the .pgpass file.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	if d.URL != "" && r == repo.NormalRole {
		return postgres.NewPool(ctx, d.URL)
	}
	path := filepath.Join(d.PassDir, ".pgpass")
	u, err := d.ConnectionURL(r, path)
	if err == nil {
		p, err2 := postgres.NewPool(ctx, u)
		if err2 == nil {
			return p, nil
		}
		err = err2
	}
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	log.Warn(
		ctx, "trying the renewed passwords file",
		log.Err("err", err),
		slog.String("failed", path),
		slog.String("next", newPath),
	)
	u, err = d.ConnectionURL(r, newPath)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", newPath, err)
	}
	p, err := postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err = os.Rename(newPath, path); err != nil {
		p.Close()
		return nil, fmt.Errorf("os.Rename: %w", err)
	}
	return p, nil
}

// ConnectionURL reads the r role password from the path pgpass file
// and returns the connection URL. Each non-empty and non-commented
// line of that file is like host:port:dbname:role:password.
func (d Database) ConnectionURL(
	r repo.Role, path string,
) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	r = r + d.RoleSuffix
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", errors.New("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a schema repository which hashes the
// passwords with the configured SCRAM mechanism.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher, *d.PasswordIters)
}

// RenewPasswords generates a random password for each one of roles,
// writes them into the .pgpass.new file, and calls change in order
// to update them in the database. The returned finalizer moves the
// .pgpass.new file over the .pgpass file and must be called after
// the change is committed.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	passwords := make([]string, len(roles))
	b := make([]byte, 16) // 128 bits
	enc := base64.RawStdEncoding
	p := make([]byte, enc.EncodedLen(len(b)))
	prfx := fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Name)
	lines := make([]string, len(passwords))
	for i, r := range roles {
		if _, err = rand.Read(b); err != nil {
			return nil, fmt.Errorf("rand.Read for i=%d: %w", i, err)
		}
		enc.Encode(p, b)
		passwords[i] = string(p)
		r = r + d.RoleSuffix
		lines[i] = fmt.Sprintf("%s:%s:%s\n", prfx, r, passwords[i])
	}
	orgPath := filepath.Join(d.PassDir, ".pgpass")
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	finalizer = func() error {
		return os.Rename(newPath, orgPath)
	}
	err = os.WriteFile(newPath, []byte(strings.Join(lines, "")), 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %q file: %w", newPath, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return finalizer, nil
}

// ValidateAndNormalize selects the SCRAM hasher and fills defaults.
func (d *Database) ValidateAndNormalize() error {
	if d.AuthMethod == "" {
		d.AuthMethod = "scram-sha-256"
	}
	m, err := scram.ByName(d.AuthMethod)
	if err != nil {
		return fmt.Errorf("auth-method: %w", err)
	}
	d.hasher = m
	if d.PasswordIters == nil {
		iters := scram.MinIters
		d.PasswordIters = &iters
	}
	minIters := scram.MinIters
	if err := settings.VerifyRange(&d.PasswordIters, &minIters, nil); err != nil {
		return fmt.Errorf("password-iters: %w", err)
	}
	if d.URL == "" {
		switch {
		case d.Host == "":
			return errors.New("host is required")
		case d.Port <= 0 || d.Port > 65535:
			return fmt.Errorf("invalid port: %d", d.Port)
		case d.Name == "":
			return errors.New("name is required")
		}
	}
	if d.PassDir == "" {
		d.PassDir = "."
	}
	return nil
}
