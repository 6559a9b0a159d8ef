// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres implements the repo.Pool, repo.Conn, and repo.Tx
// interfaces using GORM over the pgx driver. Its sub-packages (named
// with an rp suffix) implement the repositories of each aggregate.
// They type-assert the repo.Conn and repo.Tx arguments into the *Conn
// and *Tx types of this package in order to access GORM.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/freight/pkg/core/cerr"
	"gorm.io/gorm"
)

// PostgreSQL error codes which are mapped to the cerr kinds.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	exclusionViolation  = "23P01"
)

// Classify converts the well-known database errors into cerr errors.
// A missing record becomes a NotFound error and unique or exclusion
// constraint violations become Conflict errors. The what argument
// describes the affected entity. Other errors are wrapped as is.
func Classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cerr.NotFoundf("%s is not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation, exclusionViolation:
			return cerr.Conflict(fmt.Errorf(
				"%s: %s (%s)", what, pgErr.Message, pgErr.ConstraintName,
			))
		case foreignKeyViolation:
			return cerr.NotFoundf(
				"%s: referenced record is missing (%s)",
				what, pgErr.ConstraintName,
			)
		case checkViolation:
			return cerr.Validationf(
				"%s: %s (%s)", what, pgErr.Message, pgErr.ConstraintName,
			)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return cerr.Conflict(err)
	}
	return err
}

// Affected checks the result of an UPDATE or DELETE statement which
// must affect at least one row. Zero affected rows mean that the what
// entity is missing.
func Affected(res *gorm.DB, what string) error {
	if res.Error != nil {
		return Classify(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return cerr.NotFoundf("%s is not found", what)
	}
	return nil
}
