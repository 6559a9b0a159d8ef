// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package requestsuc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/internal/test/dbcontainer"
	"github.com/momeni/freight/internal/test/fixture"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/catalogrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/outboxrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/requestsrp"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/usecase/requestsuc"
	"github.com/stretchr/testify/suite"
)

type RequestsUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	Fx   *fixture.Fixture
	UC   *requestsuc.UseCase
}

func TestRequestsUseCaseTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &RequestsUseCaseTestSuite{Ctx: ctx, Pool: pool})
}

func (rts *RequestsUseCaseTestSuite) SetupSuite() {
	rts.Fx = fixture.New(rts.Ctx, rts.T(), rts.Pool)
	rts.UC = requestsuc.New(
		rts.Pool, requestsrp.New(), catalogrp.New(), outboxrp.New(),
	)
}

func (rts *RequestsUseCaseTestSuite) SetupTest() {
	rts.Fx.Reset(rts.T())
}

func (rts *RequestsUseCaseTestSuite) draft(cargo ...model.Cargo) *model.Request {
	return &model.Request{
		CompanyID:       uuid.New(),
		CreatorID:       uuid.New(),
		PickupAddress:   "Isfahan",
		DeliveryAddress: "Shiraz",
		PickupDate:      fixture.March(1),
		DeliveryDate:    fixture.March(3),
		DistanceKm:      fixture.D("480"),
		Cargo:           cargo,
	}
}

func (rts *RequestsUseCaseTestSuite) TestCreate() {
	ct := rts.Fx.CargoType(rts.T(), "1.2")
	cold, lift := rts.Fx.Requirement(rts.T(), "150"), rts.Fx.Requirement(rts.T(), "60")
	d := rts.draft(
		fixture.Cargo("120", "0.8", &model.CargoType{ID: ct.ID}, cold, lift),
		fixture.Cargo("40", "0.3", &model.CargoType{ID: ct.ID}),
	)

	r, err := rts.UC.Create(rts.Ctx, d)
	rts.Require().NoError(err)
	rts.Equal(model.RequestNew, r.Status)
	rts.Nil(r.PreliminaryCost)

	got, err := rts.UC.Get(rts.Ctx, r.ID)
	rts.Require().NoError(err)
	rts.Equal(d.CompanyID, got.CompanyID)
	rts.Require().Len(got.Cargo, 2)
	rts.True(fixture.D("1.2").Equal(got.Cargo[0].Type.Multiplier))
	rts.Require().Len(got.Cargo[0].Requirements, 2)
	rts.ElementsMatch(
		[]uuid.UUID{cold.ID, lift.ID},
		[]uuid.UUID{
			got.Cargo[0].Requirements[0].ID,
			got.Cargo[0].Requirements[1].ID,
		},
	)
	rts.Empty(got.Cargo[1].Requirements)
	rts.True(fixture.D("40").Equal(got.Cargo[1].WeightKg), "cargo order")
}

func (rts *RequestsUseCaseTestSuite) TestCreateErrors() {
	ct := rts.Fx.CargoType(rts.T(), "1.0")
	inverted := rts.draft()
	inverted.DeliveryDate = fixture.March(1).Add(-time.Minute)
	negative := rts.draft(fixture.Cargo("-1", "1", ct))
	unknown := rts.draft(fixture.Cargo("1", "1", &model.CargoType{ID: uuid.New()}))
	for _, tc := range []struct {
		name string
		r    *model.Request
		kind cerr.Kind
	}{
		{"inverted dates", inverted, cerr.KindValidation},
		{"negative weight", negative, cerr.KindValidation},
		{"unknown cargo type", unknown, cerr.KindNotFound},
	} {
		rts.Run(tc.name, func() {
			_, err := rts.UC.Create(rts.Ctx, tc.r)
			rts.True(cerr.Is(err, tc.kind), "got %v", err)
		})
	}
	rts.Equal(0, rts.Fx.Count(rts.T(), "requests", "true"))
}

func (rts *RequestsUseCaseTestSuite) TestUpdateStatus() {
	r, err := rts.UC.Create(rts.Ctx, rts.draft())
	rts.Require().NoError(err)

	_, err = rts.UC.UpdateStatus(rts.Ctx, r.ID, model.RequestCompleted)
	rts.True(cerr.Is(err, cerr.KindInvalidTransition), "got %v", err)

	r, err = rts.UC.UpdateStatus(rts.Ctx, r.ID, model.RequestProcessing)
	rts.Require().NoError(err)
	rts.Equal(model.RequestProcessing, r.Status)

	r, err = rts.UC.UpdateStatus(rts.Ctx, r.ID, model.RequestRejected)
	rts.Require().NoError(err)
	rts.Equal(model.RequestRejected, r.Status)

	_, err = rts.UC.UpdateStatus(rts.Ctx, r.ID, model.RequestProcessing)
	rts.True(cerr.Is(err, cerr.KindInvalidTransition), "got %v", err)
	rts.Equal(2, rts.Fx.Count(
		rts.T(), "outbox", "entity_id = ? AND event_type = ?",
		r.ID, string(model.EventRequestStatusChanged),
	))

	_, err = rts.UC.UpdateStatus(rts.Ctx, uuid.New(), model.RequestRejected)
	rts.True(cerr.Is(err, cerr.KindNotFound), "got %v", err)
	_, err = rts.UC.UpdateStatus(rts.Ctx, r.ID, model.RequestStatusInvalid)
	rts.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
}
