// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dispatchuc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/internal/test/dbcontainer"
	"github.com/momeni/freight/internal/test/fixture"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/availrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/fleetrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/outboxrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/requestsrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/shipmentsrp"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/momeni/freight/pkg/core/repo"
	"github.com/momeni/freight/pkg/core/usecase/availuc"
	"github.com/momeni/freight/pkg/core/usecase/dispatchuc"
	"github.com/stretchr/testify/suite"
)

type DispatchUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	Fx   *fixture.Fixture
	UC   *dispatchuc.UseCase

	ct *model.CargoType
}

func TestDispatchUseCaseTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &DispatchUseCaseTestSuite{Ctx: ctx, Pool: pool})
}

func (dts *DispatchUseCaseTestSuite) SetupSuite() {
	dts.Fx = fixture.New(dts.Ctx, dts.T(), dts.Pool)
	dts.UC = dts.newUseCase(true)
}

func (dts *DispatchUseCaseTestSuite) SetupTest() {
	dts.Fx.Reset(dts.T())
	dts.ct = dts.Fx.CargoType(dts.T(), "1.0")
}

func (dts *DispatchUseCaseTestSuite) newUseCase(capacityCheck bool) *dispatchuc.UseCase {
	fleet := fleetrp.New()
	uc, err := dispatchuc.New(
		dts.Pool,
		dispatchuc.Repos{
			Requests:  requestsrp.New(),
			Fleet:     fleet,
			Shipments: shipmentsrp.New(),
			Outbox:    outboxrp.New(),
		},
		availuc.New(dts.Pool, fleet, availrp.New()),
		dispatchuc.WithCapacityCheck(capacityCheck),
	)
	dts.Require().NoError(err)
	return uc
}

func (dts *DispatchUseCaseTestSuite) request(start, end int) *model.Request {
	return dts.Fx.Request(
		dts.T(), fixture.Days(start, end), "100",
		fixture.Cargo("500", "5", dts.ct),
	)
}

func (dts *DispatchUseCaseTestSuite) params(
	r *model.Request, d *model.Driver, v *model.Vehicle, w model.Window,
) dispatchuc.AllocateParams {
	return dispatchuc.AllocateParams{
		RequestID: r.ID, DriverID: d.ID, VehicleID: v.ID, Planned: w,
	}
}

func (dts *DispatchUseCaseTestSuite) driver(id uuid.UUID) *model.Driver {
	var d *model.Driver
	err := dts.Pool.Conn(dts.Ctx, func(ctx context.Context, c repo.Conn) (err error) {
		d, err = fleetrp.New().Conn(c).GetDriver(ctx, id)
		return err
	})
	dts.Require().NoError(err)
	return d
}

func (dts *DispatchUseCaseTestSuite) vehicle(id uuid.UUID) *model.Vehicle {
	var v *model.Vehicle
	err := dts.Pool.Conn(dts.Ctx, func(ctx context.Context, c repo.Conn) (err error) {
		v, err = fleetrp.New().Conn(c).GetVehicle(ctx, id)
		return err
	})
	dts.Require().NoError(err)
	return v
}

func (dts *DispatchUseCaseTestSuite) storedRequest(id uuid.UUID) *model.Request {
	var r *model.Request
	err := dts.Pool.Conn(dts.Ctx, func(ctx context.Context, c repo.Conn) (err error) {
		r, err = requestsrp.New().Conn(c).Get(ctx, id)
		return err
	})
	dts.Require().NoError(err)
	return r
}

func (dts *DispatchUseCaseTestSuite) TestAllocate() {
	d, v := dts.Fx.Driver(dts.T()), dts.Fx.Vehicle(dts.T(), "1000", "10")
	r := dts.request(1, 5)
	cost := fixture.D("1234.50")
	p := dts.params(r, d, v, fixture.Days(1, 5))
	p.FinalCost = &cost

	s, err := dts.UC.Allocate(dts.Ctx, p)
	dts.Require().NoError(err)
	dts.Equal(model.ShipmentPlanned, s.Status)
	dts.Equal(r.ID, s.RequestID)
	dts.Nil(s.LtlShipmentID)

	dts.False(dts.driver(d.ID).Available)
	dts.Equal(model.AssignedLabel, dts.driver(d.ID).Status)
	dts.False(dts.vehicle(v.ID).Available)
	got := dts.storedRequest(r.ID)
	dts.Equal(model.RequestCompleted, got.Status)
	dts.Require().NotNil(got.FinalCost)
	dts.True(cost.Equal(*got.FinalCost))
	dts.Equal(2, dts.Fx.Count(dts.T(), "outbox", "true"))

	loaded, err := dts.UC.Get(dts.Ctx, s.ID)
	dts.Require().NoError(err)
	dts.Equal(s.ID, loaded.ID)
	dts.True(s.Planned.Start.Equal(loaded.Planned.Start))
}

func (dts *DispatchUseCaseTestSuite) TestDoubleBookingIsRefused() {
	d := dts.Fx.Driver(dts.T())
	v1 := dts.Fx.Vehicle(dts.T(), "1000", "10")
	v2 := dts.Fx.Vehicle(dts.T(), "1000", "10")
	r1, r2 := dts.request(1, 5), dts.request(3, 6)

	s1, err := dts.UC.Allocate(dts.Ctx, dts.params(r1, d, v1, fixture.Days(1, 5)))
	dts.Require().NoError(err)

	_, err = dts.UC.Allocate(dts.Ctx, dts.params(r2, d, v2, fixture.Days(3, 6)))
	dts.Require().Error(err)
	dts.True(cerr.Is(err, cerr.KindConflict), "got %v", err)

	dts.False(dts.driver(d.ID).Available)
	dts.True(dts.vehicle(v2.ID).Available, "refused allocation kept v2")
	dts.Equal(model.RequestNew, dts.storedRequest(r2.ID).Status)
	s, err := dts.UC.Get(dts.Ctx, s1.ID)
	dts.Require().NoError(err)
	dts.Equal(model.ShipmentPlanned, s.Status)
	dts.Equal(1, dts.Fx.Count(dts.T(), "shipments", "true"))
}

func (dts *DispatchUseCaseTestSuite) TestCancelledShipmentDoesNotBlock() {
	d1 := dts.Fx.Driver(dts.T())
	d2 := dts.Fx.Driver(dts.T())
	v := dts.Fx.Vehicle(dts.T(), "1000", "10")
	s1, err := dts.UC.Allocate(
		dts.Ctx, dts.params(dts.request(1, 5), d1, v, fixture.Days(1, 5)),
	)
	dts.Require().NoError(err)
	_, err = dts.UC.UpdateStatus(dts.Ctx, s1.ID, model.ShipmentCancelled)
	dts.Require().NoError(err)
	dts.True(dts.vehicle(v.ID).Available)

	_, err = dts.UC.Allocate(
		dts.Ctx, dts.params(dts.request(4, 8), d2, v, fixture.Days(4, 8)),
	)
	dts.NoError(err, "cancelled shipments do not block")
}

// assertBlocked checks that err is a Conflict caused by the blockerID
// record, rather than by the availability flags.
func (dts *DispatchUseCaseTestSuite) assertBlocked(
	err error, resource model.ResourceKind, resourceID uuid.UUID,
	blocker model.BlockerKind, blockerID uuid.UUID,
) {
	dts.Require().Error(err)
	dts.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
	var ce *model.ConflictError
	dts.Require().True(errors.As(err, &ce), "got %v", err)
	dts.Equal(resource, ce.Resource)
	dts.Equal(resourceID, ce.ResourceID)
	dts.Equal(blocker, ce.Blocker)
	dts.Equal(blockerID, ce.BlockerID)
}

func (dts *DispatchUseCaseTestSuite) TestMaintenanceBlocksAllocation() {
	d, v := dts.Fx.Driver(dts.T()), dts.Fx.Vehicle(dts.T(), "1000", "10")
	end := fixture.March(4)
	mw := &model.MaintenanceWindow{
		ID: uuid.New(), VehicleID: v.ID,
		Window: model.OpenWindow{Start: fixture.March(3), End: &end},
	}
	dts.Fx.Tx(dts.T(), func(ctx context.Context, tx repo.Tx) error {
		return fleetrp.New().Tx(tx).AddMaintenance(ctx, mw)
	})
	dts.True(dts.vehicle(v.ID).Available)
	r := dts.request(1, 5)

	_, err := dts.UC.Allocate(dts.Ctx, dts.params(r, d, v, fixture.Days(1, 5)))
	dts.assertBlocked(
		err, model.ResourceVehicle, v.ID, model.BlockedByMaintenance, mw.ID,
	)
	dts.True(dts.driver(d.ID).Available, "driver flag must be rolled back")
	dts.Equal(0, dts.Fx.Count(dts.T(), "shipments", "true"))

	_, err = dts.UC.Allocate(dts.Ctx, dts.params(r, d, v, fixture.Days(5, 8)))
	dts.NoError(err, "the window after maintenance is free")
}

func (dts *DispatchUseCaseTestSuite) TestDeliveredShipmentKeepsItsWindow() {
	d1, d2 := dts.Fx.Driver(dts.T()), dts.Fx.Driver(dts.T())
	v := dts.Fx.Vehicle(dts.T(), "1000", "10")
	s1, err := dts.UC.Allocate(
		dts.Ctx, dts.params(dts.request(1, 5), d1, v, fixture.Days(1, 5)),
	)
	dts.Require().NoError(err)
	for _, next := range []model.ShipmentStatus{
		model.ShipmentInTransit, model.ShipmentDelivered,
	} {
		_, err = dts.UC.UpdateStatus(dts.Ctx, s1.ID, next)
		dts.Require().NoError(err)
	}
	dts.True(dts.vehicle(v.ID).Available, "delivery releases the vehicle")

	_, err = dts.UC.Allocate(
		dts.Ctx, dts.params(dts.request(4, 8), d2, v, fixture.Days(4, 8)),
	)
	dts.assertBlocked(
		err, model.ResourceVehicle, v.ID, model.BlockedByShipment, s1.ID,
	)

	_, err = dts.UC.Allocate(
		dts.Ctx, dts.params(dts.request(6, 8), d2, v, fixture.Days(6, 8)),
	)
	dts.NoError(err)
}

func (dts *DispatchUseCaseTestSuite) TestAllocationIsAtomic() {
	d := dts.Fx.Driver(dts.T())
	tiny := dts.Fx.Vehicle(dts.T(), "100", "1")
	r := dts.request(1, 5)

	_, err := dts.UC.Allocate(dts.Ctx, dts.params(r, d, tiny, fixture.Days(1, 5)))
	dts.Require().Error(err)
	dts.True(cerr.Is(err, cerr.KindConflict), "got %v", err)
	dts.True(dts.driver(d.ID).Available, "driver flag must be rolled back")
	dts.Equal(model.RequestNew, dts.storedRequest(r.ID).Status)
	dts.Equal(0, dts.Fx.Count(dts.T(), "shipments", "true"))
	dts.Equal(0, dts.Fx.Count(dts.T(), "outbox", "true"))

	unchecked := dts.newUseCase(false)
	_, err = unchecked.Allocate(dts.Ctx, dts.params(r, d, tiny, fixture.Days(1, 5)))
	dts.NoError(err, "capacity check is disabled")
}

func (dts *DispatchUseCaseTestSuite) TestAllocateErrors() {
	d, v := dts.Fx.Driver(dts.T()), dts.Fx.Vehicle(dts.T(), "1000", "10")
	r := dts.request(1, 5)
	for _, tc := range []struct {
		name string
		p    dispatchuc.AllocateParams
		kind cerr.Kind
	}{
		{
			name: "inverted window",
			p:    dts.params(r, d, v, fixture.Days(5, 1)),
			kind: cerr.KindValidation,
		},
		{
			name: "missing request",
			p: dispatchuc.AllocateParams{
				RequestID: uuid.New(), DriverID: d.ID, VehicleID: v.ID,
				Planned: fixture.Days(1, 5),
			},
			kind: cerr.KindNotFound,
		},
		{
			name: "missing driver",
			p: dispatchuc.AllocateParams{
				RequestID: r.ID, DriverID: uuid.New(), VehicleID: v.ID,
				Planned: fixture.Days(1, 5),
			},
			kind: cerr.KindNotFound,
		},
		{
			name: "missing vehicle",
			p: dispatchuc.AllocateParams{
				RequestID: r.ID, DriverID: d.ID, VehicleID: uuid.New(),
				Planned: fixture.Days(1, 5),
			},
			kind: cerr.KindNotFound,
		},
	} {
		dts.Run(tc.name, func() {
			_, err := dts.UC.Allocate(dts.Ctx, tc.p)
			dts.Require().Error(err)
			dts.True(cerr.Is(err, tc.kind), "got %v", err)
		})
	}

	_, err := dts.UC.Allocate(dts.Ctx, dts.params(r, d, v, fixture.Days(1, 5)))
	dts.Require().NoError(err)
	d2, v2 := dts.Fx.Driver(dts.T()), dts.Fx.Vehicle(dts.T(), "1000", "10")
	_, err = dts.UC.Allocate(dts.Ctx, dts.params(r, d2, v2, fixture.Days(10, 12)))
	dts.Require().Error(err)
	dts.True(cerr.Is(err, cerr.KindConflict), "request is allocated twice")
}

func (dts *DispatchUseCaseTestSuite) TestConcurrentAllocations() {
	d := dts.Fx.Driver(dts.T())
	const n = 4
	type attempt struct {
		r *model.Request
		v *model.Vehicle
	}
	attempts := make([]attempt, n)
	for i := range attempts {
		attempts[i] = attempt{
			r: dts.request(1, 5),
			v: dts.Fx.Vehicle(dts.T(), "1000", "10"),
		}
	}
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i, a := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = dts.UC.Allocate(
				dts.Ctx, dts.params(a.r, d, a.v, fixture.Days(2, 4)),
			)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !cerr.Is(err, cerr.KindConflict):
			dts.Fail("unexpected error", "%v", err)
		}
	}
	dts.Equal(1, succeeded)
	dts.Equal(1, dts.Fx.Count(dts.T(), "shipments", "driver_id = ?", d.ID))
}

func (dts *DispatchUseCaseTestSuite) TestLifecycle() {
	d, v := dts.Fx.Driver(dts.T()), dts.Fx.Vehicle(dts.T(), "1000", "10")
	s, err := dts.UC.Allocate(
		dts.Ctx, dts.params(dts.request(1, 5), d, v, fixture.Days(1, 5)),
	)
	dts.Require().NoError(err)

	err = dts.UC.Delete(dts.Ctx, s.ID)
	dts.True(cerr.Is(err, cerr.KindConflict), "got %v", err)

	_, err = dts.UC.UpdateStatus(dts.Ctx, s.ID, model.ShipmentConsolidated)
	dts.True(cerr.Is(err, cerr.KindInvalidTransition), "got %v", err)
	_, err = dts.UC.UpdateStatus(dts.Ctx, s.ID, model.ShipmentDelivered)
	dts.True(cerr.Is(err, cerr.KindInvalidTransition), "got %v", err)

	s, err = dts.UC.UpdateStatus(dts.Ctx, s.ID, model.ShipmentInTransit)
	dts.Require().NoError(err)
	dts.NotNil(s.ActualPickup)
	dts.False(dts.driver(d.ID).Available)

	s, err = dts.UC.UpdateStatus(dts.Ctx, s.ID, model.ShipmentDelivered)
	dts.Require().NoError(err)
	dts.NotNil(s.ActualDelivery)
	dts.True(dts.driver(d.ID).Available)
	dts.True(dts.vehicle(v.ID).Available)
	released := dts.Fx.Count(
		dts.T(), "outbox", "event_type = ?",
		string(model.EventResourcesReleased),
	)
	dts.Equal(1, released)

	s, err = dts.UC.UpdateStatus(dts.Ctx, s.ID, model.ShipmentPODReceived)
	dts.Require().NoError(err)
	dts.Equal(1, dts.Fx.Count(
		dts.T(), "outbox", "event_type = ?",
		string(model.EventResourcesReleased),
	), "resources are released once")

	dts.Require().NoError(dts.UC.Delete(dts.Ctx, s.ID))
	_, err = dts.UC.Get(dts.Ctx, s.ID)
	dts.True(cerr.Is(err, cerr.KindNotFound), "got %v", err)
}

func (dts *DispatchUseCaseTestSuite) TestUnknownShipment() {
	_, err := dts.UC.UpdateStatus(dts.Ctx, uuid.New(), model.ShipmentInTransit)
	var ce *cerr.Error
	dts.Require().True(errors.As(err, &ce), "got %v", err)
	dts.Equal(cerr.KindNotFound, ce.Kind)
}
