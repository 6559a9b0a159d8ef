// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package initdbuc_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/momeni/freight/internal/test/dbcontainer"
	"github.com/momeni/freight/internal/test/schema"
	"github.com/momeni/freight/pkg/adapter/config"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/hash/scram"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/initdbuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type InitDBTestSuite struct {
	Ctx  context.Context
	Pool *postgres.Pool
	Port int

	dbDir  string
	hasher *scram.Mechanism
}

func TestInitDBTestSuite(t *testing.T) {
	ctx := context.Background()
	pg, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	u, err := url.Parse(pg.ConnectionString())
	if ok := assert.NoError(t, err, "parsing DB container URL"); !ok {
		return
	}
	p, err := strconv.Atoi(u.Port())
	if ok := assert.NoError(t, err, "parsing DB container port"); !ok {
		return
	}
	dbDir, err := os.MkdirTemp("", "initdb-db")
	if ok := assert.NoError(t, err, "creating temp db dir"); !ok {
		return
	}
	defer func() {
		err := os.RemoveAll(dbDir)
		assert.NoError(t, err, "removing temp db dir")
	}()
	idts := &InitDBTestSuite{
		Ctx:    ctx,
		Pool:   pool,
		Port:   p,
		dbDir:  dbDir,
		hasher: scram.SHA256(),
	}
	t.Run("dev", idts.TestInitDev)
	t.Run("prod", idts.TestInitProd)
	t.Run("reinit", idts.TestReinitRenewsPasswords)
}

func (idts *InitDBTestSuite) TestInitDev(t *testing.T) {
	r := require.New(t)
	c := idts.createEmptyDB(t, "initdev")
	r.NoError(initdbuc.New(c).InitDev(idts.Ctx), "InitDev")
	idts.verify(t, c, func(ctx context.Context, v *schema.Verifier) {
		v.VerifySchema(ctx, t)
		v.VerifyDevData(ctx, t)
	})
}

func (idts *InitDBTestSuite) TestInitProd(t *testing.T) {
	r := require.New(t)
	c := idts.createEmptyDB(t, "initprod")
	r.NoError(initdbuc.New(c).InitProd(idts.Ctx), "InitProd")
	idts.verify(t, c, func(ctx context.Context, v *schema.Verifier) {
		v.VerifySchema(ctx, t)
		v.VerifyProdData(ctx, t)
		assert.Zero(t, v.Count(ctx, t, "tariffs"), "no sample tariffs")
		assert.Zero(t, v.Count(ctx, t, "drivers"), "no sample drivers")
	})
}

func (idts *InitDBTestSuite) TestReinitRenewsPasswords(t *testing.T) {
	r := require.New(t)
	c := idts.createEmptyDB(t, "reinit")
	uc := initdbuc.New(c)
	r.NoError(uc.InitDev(idts.Ctx), "first InitDev")
	pgpass := filepath.Join(c.Database.PassDir, ".pgpass")
	before, err := os.ReadFile(pgpass)
	r.NoError(err)

	r.NoError(uc.InitProd(idts.Ctx), "InitProd over a dev database")
	after, err := os.ReadFile(pgpass)
	r.NoError(err)
	r.NotEqual(string(before), string(after), "passwords are renewed")
	_, err = os.Stat(pgpass + ".new")
	r.True(os.IsNotExist(err), "temporary passwords file is moved")
	idts.verify(t, c, func(ctx context.Context, v *schema.Verifier) {
		v.VerifySchema(ctx, t)
		v.VerifyProdData(ctx, t)
	})
}

func (idts *InitDBTestSuite) verify(
	t *testing.T, c *config.Config,
	verify func(ctx context.Context, v *schema.Verifier),
) {
	p, err := c.ConnectionPool(idts.Ctx, repo.NormalRole)
	require.NoError(t, err, "creating connection pool")
	defer p.Close()
	err = p.Conn(idts.Ctx, func(ctx context.Context, cn repo.Conn) error {
		verify(ctx, schema.NewVerifier(cn, initdbuc.SchemaName))
		return nil
	})
	require.NoError(t, err, "verifying database schema")
}

// createEmptyDB creates the name database and an admin role which is
// suffixed by name, records its password in a fresh passwords dir,
// and returns the matching configuration settings.
func (idts *InitDBTestSuite) createEmptyDB(
	t *testing.T, name string,
) *config.Config {
	roleSuffix := repo.Role("_" + name)
	u := repo.AdminRole + roleSuffix
	p := idts.randPass(t)
	err := idts.Pool.Conn(
		idts.Ctx, func(ctx context.Context, c repo.Conn) error {
			// DDL statements are not parameterized, but name and u
			// are trusted.
			if _, err := c.Exec(
				ctx, "CREATE DATABASE "+name,
			); err != nil {
				return fmt.Errorf("creating %q database: %w", name, err)
			}
			hp, err := idts.hasher.Hash(p, "", scram.MinIters)
			if err != nil {
				return fmt.Errorf(
					"computing scram hash of password: %w", err,
				)
			}
			// SUPERUSER is required for CREATE EXTENSION
			if _, err := c.Exec(
				ctx,
				fmt.Sprintf(
					`CREATE ROLE %s
WITH SUPERUSER LOGIN PASSWORD '%s';
GRANT ALL PRIVILEGES ON DATABASE %s TO %[1]s`,
					u, hp, name,
				),
			); err != nil {
				return fmt.Errorf("creating %q role: %w", u, err)
			}
			return nil
		},
	)
	require.NoError(t, err, "main connection error")
	d := filepath.Join(idts.dbDir, name)
	require.NoError(t, os.Mkdir(d, 0o700), "creating %q dir", d)
	line := fmt.Sprintf("127.0.0.1:%d:%s:%s:%s\n", idts.Port, name, u, p)
	pgpass := filepath.Join(d, ".pgpass")
	err = os.WriteFile(pgpass, []byte(line), 0o600)
	require.NoError(t, err, "writing %q file", pgpass)

	c := &config.Config{
		Database: config.Database{
			Host:       "127.0.0.1",
			Port:       idts.Port,
			Name:       name,
			PassDir:    d,
			RoleSuffix: roleSuffix,
		},
	}
	require.NoError(t, c.ValidateAndNormalize(), "validating configs")
	return c
}

func (idts *InitDBTestSuite) randPass(t *testing.T) string {
	b := make([]byte, 8)
	_, err := rand.Read(b)
	require.NoError(t, err, "generating a random password")
	return fmt.Sprintf("%x", b)
}
