// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pricinguc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/internal/test/dbcontainer"
	"github.com/momeni/freight/internal/test/fixture"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/catalogrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/requestsrp"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/pricinguc"
	"github.com/stretchr/testify/suite"
)

type PricingUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	Fx   *fixture.Fixture
	UC   *pricinguc.UseCase
}

func TestPricingUseCaseTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &PricingUseCaseTestSuite{Ctx: ctx, Pool: pool})
}

func (pts *PricingUseCaseTestSuite) SetupSuite() {
	pts.Fx = fixture.New(pts.Ctx, pts.T(), pts.Pool)
	pts.UC = pricinguc.New(pts.Pool, catalogrp.New(), requestsrp.New())
}

func (pts *PricingUseCaseTestSuite) SetupTest() {
	pts.Fx.Reset(pts.T())
}

func (pts *PricingUseCaseTestSuite) newTariff(base string) *model.Tariff {
	t, err := pts.UC.CreateTariff(pts.Ctx, &model.Tariff{
		Name:      "t-" + base,
		BaseFee:   dec(base),
		CostPerKm: dec("45"),
		CostPerKg: dec("3.5"),
		CostPerM3: dec("150"),
	})
	pts.Require().NoError(err)
	pts.False(t.Active, "tariffs are created inactive")
	return t
}

func (pts *PricingUseCaseTestSuite) TestSingleActiveTariff() {
	_, err := pts.UC.ActiveTariff(pts.Ctx)
	pts.True(cerr.Is(err, cerr.KindNotFound), "got %v", err)

	standard, winter := pts.newTariff("5000"), pts.newTariff("6000")
	_, err = pts.UC.ActiveTariff(pts.Ctx)
	pts.True(cerr.Is(err, cerr.KindNotFound), "created tariffs are inactive")

	t, err := pts.UC.ActivateTariff(pts.Ctx, standard.ID)
	pts.Require().NoError(err)
	pts.True(t.Active)
	t, err = pts.UC.ActivateTariff(pts.Ctx, winter.ID)
	pts.Require().NoError(err)
	pts.True(t.Active)

	active, err := pts.UC.ActiveTariff(pts.Ctx)
	pts.Require().NoError(err)
	pts.Equal(winter.ID, active.ID)
	pts.Equal(1, pts.Fx.Count(pts.T(), "tariffs", "active"))

	_, err = pts.UC.ActivateTariff(pts.Ctx, uuid.New())
	pts.True(cerr.Is(err, cerr.KindNotFound), "got %v", err)
	active, err = pts.UC.ActiveTariff(pts.Ctx)
	pts.Require().NoError(err)
	pts.Equal(winter.ID, active.ID)
}

func (pts *PricingUseCaseTestSuite) TestCatalogValidation() {
	_, err := pts.UC.CreateTariff(pts.Ctx, &model.Tariff{
		Name: "broken", BaseFee: dec("-1"),
	})
	pts.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
	_, err = pts.UC.CreateTariff(pts.Ctx, &model.Tariff{})
	pts.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
	_, err = pts.UC.CreateCargoType(pts.Ctx, &model.CargoType{
		Name: "light", Multiplier: dec("0.9"),
	})
	pts.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
	_, err = pts.UC.CreateRequirement(pts.Ctx, &model.Requirement{
		Name: "free", FlatFee: dec("-5"),
	})
	pts.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
}

func (pts *PricingUseCaseTestSuite) TestPriceRequest() {
	pts.Fx.Tariff(pts.T(), "5000", "45", "3.5", "150")
	ct, err := pts.UC.CreateCargoType(pts.Ctx, &model.CargoType{
		Name: "standard-" + uuid.NewString()[:6], Multiplier: dec("1.0"),
	})
	pts.Require().NoError(err)
	r := pts.Fx.Request(
		pts.T(), fixture.Days(1, 2), "700", fixture.Cargo("500", "2.5", ct),
	)

	b, err := pts.UC.PriceRequest(pts.Ctx, r.ID)
	pts.Require().NoError(err)
	assertDec(pts.T(), "38625.00", b.PreliminaryCost, "total")
	pts.Equal(1, pts.Fx.Count(
		pts.T(), "requests", "id = ? AND preliminary_cost = 38625", r.ID,
	))

	pts.Fx.Tariff(pts.T(), "6000", "45", "3.5", "150")
	b, err = pts.UC.PriceRequest(pts.Ctx, r.ID)
	pts.Require().NoError(err)
	assertDec(pts.T(), "39625.00", b.PreliminaryCost, "repriced total")

	_, err = pts.UC.PriceRequest(pts.Ctx, uuid.New())
	pts.True(cerr.Is(err, cerr.KindNotFound), "got %v", err)
}

func (pts *PricingUseCaseTestSuite) TestTerminalRequestIsNotPriced() {
	pts.Fx.Tariff(pts.T(), "5000", "45", "3.5", "150")
	r := pts.Fx.Request(pts.T(), fixture.Days(1, 2), "10")
	pts.Fx.Tx(pts.T(), func(ctx context.Context, tx repo.Tx) error {
		return requestsrp.New().Tx(tx).UpdateStatus(ctx, r.ID, model.RequestRejected)
	})
	_, err := pts.UC.PriceRequest(pts.Ctx, r.ID)
	pts.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
}

func (pts *PricingUseCaseTestSuite) TestQuote() {
	draft := func(ct *model.CargoType, reqs ...*model.Requirement) *model.Request {
		return &model.Request{
			PickupDate:   fixture.March(1),
			DeliveryDate: fixture.March(2),
			DistanceKm:   dec("700"),
			Cargo: []model.Cargo{
				fixture.Cargo("250", "1.25", ct, reqs...),
				fixture.Cargo("250", "1.25", ct),
			},
		}
	}
	ct := pts.Fx.CargoType(pts.T(), "1.5")
	rq := pts.Fx.Requirement(pts.T(), "60")

	_, err := pts.UC.Quote(pts.Ctx, draft(ct))
	pts.True(cerr.Is(err, cerr.KindNotFound), "no active tariff: %v", err)

	pts.Fx.Tariff(pts.T(), "5000", "45", "3.5", "150")
	b, err := pts.UC.Quote(pts.Ctx, draft(ct, rq))
	pts.Require().NoError(err)
	// both items carry half of 36500 with a 0.5 extra multiplier
	assertDec(pts.T(), "18250", b.CargoTypeSurcharge, "type surcharge")
	assertDec(pts.T(), "60", b.RequirementsSurcharge, "requirements")
	assertDec(pts.T(), "56935.00", b.PreliminaryCost, "total")
	pts.Equal(0, pts.Fx.Count(pts.T(), "requests", "true"))

	_, err = pts.UC.Quote(pts.Ctx, draft(&model.CargoType{ID: uuid.New()}))
	pts.True(cerr.Is(err, cerr.KindNotFound), "got %v", err)

	bad := draft(ct)
	bad.DeliveryDate = fixture.March(1).Add(-time.Hour)
	_, err = pts.UC.Quote(pts.Ctx, bad)
	pts.True(cerr.Is(err, cerr.KindValidation), "got %v", err)
}
