// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/freight/internal/test/dbcontainer"
	"github.com/momeni/freight/internal/test/fixture"
	"github.com/momeni/freight/pkg/adapter/config"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/restful/gin"
	"github.com/momeni/freight/pkg/adapter/restful/gin/routes"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const prefix = routes.Prefix

type IntegrationGinTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pg   *sqltestutil.PostgresContainer
	Pool *postgres.Pool
	Gin  *gin.Engine
	Fx   *fixture.Fixture
}

func TestIntegrationGinTestSuite(t *testing.T) {
	ctx := context.Background()
	pg, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationGinTestSuite{
		Ctx:  ctx,
		Pg:   pg,
		Pool: pool,
	})
}

func (igts *IntegrationGinTestSuite) SetupSuite() {
	igts.Fx = fixture.New(igts.Ctx, igts.T(), igts.Pool)

	c, err := config.Parse([]byte(`
database: {host: localhost, port: 5432, name: fdweb}
gin: {recovery: true, metrics: true}
log: {level: warn}
`))
	igts.Require().NoError(err, "failed to parse the test config")
	igts.Gin = c.Gin.NewEngine(nil, *c.Redis.IdempotencyTTL)
	igts.Require().NotNil(igts.Gin, "cannot instantiate Gin engine")
	err = routes.Register(igts.Gin, igts.Pool, c)
	igts.Require().NoError(err, "failed to register Gin routes")
}

func (igts *IntegrationGinTestSuite) SetupTest() {
	igts.Fx.Reset(igts.T())
}

func jsonBody(v any) io.Reader {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(b)
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

// send serves a method request for the path (relative to the routes
// prefix) and decodes its JSON response into res (unless res is nil).
func (igts *IntegrationGinTestSuite) send(
	method, path string, body any, res any,
) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != nil {
		r = jsonBody(body)
	}
	req, err := http.NewRequest(method, prefix+path, r)
	igts.Require().NoError(err, "cannot create %s request", method)
	req.Header.Add("Content-Type", "application/json")
	w := httptest.NewRecorder()
	igts.Gin.ServeHTTP(w, req)
	if res != nil {
		igts.NoError(
			json.Unmarshal(w.Body.Bytes(), res),
			"body is not json: %s", w.Body.String(),
		)
	}
	return w
}

func (igts *IntegrationGinTestSuite) assertDec(
	expected string, actual decimal.Decimal, name string,
) bool {
	return igts.True(
		fixture.D(expected).Equal(actual),
		"%s: expected %s, got %s", name, expected, actual,
	)
}

type errResp struct {
	Kind          string     `json:"kind"`
	Detail        string     `json:"detail"`
	ConflictingID *uuid.UUID `json:"conflicting_id"`
}

func (igts *IntegrationGinTestSuite) TestBadRequest() {
	ct := igts.Fx.CargoType(igts.T(), "1.0")
	for _, tc := range []struct {
		name   string
		method string
		path   string
		body   any
		fields []string
	}{
		{
			name:   "request without dates",
			method: http.MethodPost,
			path:   "/requests",
			body: map[string]any{
				"distance_km": "10",
			},
			fields: []string{"PickupDate", "DeliveryDate"},
		},
		{
			name:   "request with malformed cargo type",
			method: http.MethodPost,
			path:   "/requests",
			body: map[string]any{
				"pickup_date":   "2024-03-01T00:00:00Z",
				"delivery_date": "2024-03-02T00:00:00Z",
				"cargo": []map[string]any{{
					"name":          "box",
					"cargo_type_id": "not-a-uuid",
				}},
			},
			fields: []string{"CargoTypeID"},
		},
		{
			name:   "request with malformed dates",
			method: http.MethodPost,
			path:   "/requests",
			body: map[string]any{
				"pickup_date":   "yesterday",
				"delivery_date": "2024-03-02T00:00:00Z",
				"cargo": []map[string]any{{
					"name":          "box",
					"cargo_type_id": ct.ID.String(),
				}},
			},
			fields: []string{"pickup_date"},
		},
		{
			name:   "allocation without driver",
			method: http.MethodPost,
			path:   "/shipments",
			body: map[string]any{
				"request_id":       uuid.NewString(),
				"vehicle_id":       uuid.NewString(),
				"planned_pickup":   "2024-03-01T00:00:00Z",
				"planned_delivery": "2024-03-02T00:00:00Z",
			},
			fields: []string{"DriverID"},
		},
		{
			name:   "availability of unknown kind",
			method: http.MethodGet,
			path: "/availability?kind=ship&id=" + uuid.NewString() +
				"&start=2024-03-01T00:00:00Z&end=2024-03-02T00:00:00Z",
			fields: []string{"Kind"},
		},
	} {
		igts.Run(tc.name, func() {
			res := map[string]any{}
			w := igts.send(tc.method, tc.path, tc.body, &res)
			igts.Equal(http.StatusBadRequest, w.Code, w.Body.String())
			for _, f := range tc.fields {
				igts.Contains(res, f, "missing %s field error", f)
			}
		})
	}
}

func (igts *IntegrationGinTestSuite) TestNotFound() {
	for _, path := range []string{
		"/requests/" + uuid.NewString(),
		"/shipments/" + uuid.NewString(),
		"/consolidations/" + uuid.NewString(),
		"/drivers/" + uuid.NewString(),
		"/vehicles/" + uuid.NewString(),
	} {
		igts.Run(path, func() {
			res := &errResp{}
			w := igts.send(http.MethodGet, path, nil, res)
			igts.Equal(http.StatusNotFound, w.Code)
			igts.Equal("not_found", res.Kind)
		})
	}
}

func (igts *IntegrationGinTestSuite) TestCreateAndPriceRequest() {
	igts.Fx.Tariff(igts.T(), "5000", "45", "3.5", "150")
	ct := igts.Fx.CargoType(igts.T(), "1.0")

	r := &model.Request{}
	w := igts.send(http.MethodPost, "/requests", map[string]any{
		"pickup_address":   "Tehran",
		"delivery_address": "Mashhad",
		"pickup_date":      "2024-03-01T08:00:00Z",
		"delivery_date":    "2024-03-02T18:00:00Z",
		"distance_km":      "700",
		"cargo": []map[string]any{{
			"name":          "pallets",
			"weight_kg":     500,
			"volume_m3":     "2.5",
			"cargo_type_id": ct.ID.String(),
		}},
	}, r)
	igts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	igts.Equal(model.RequestNew, r.Status)
	igts.Require().Len(r.Cargo, 1)
	igts.Equal(ct.ID, r.Cargo[0].Type.ID)
	igts.Nil(r.PreliminaryCost)

	b := &model.PriceBreakdown{}
	w = igts.send(http.MethodPost, "/requests/"+r.ID.String()+"/price", nil, b)
	igts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	igts.assertDec("38625.00", b.PreliminaryCost, "preliminary cost")

	got := &model.Request{}
	w = igts.send(http.MethodGet, "/requests/"+r.ID.String(), nil, got)
	igts.Require().Equal(http.StatusOK, w.Code)
	igts.Require().NotNil(got.PreliminaryCost)
	igts.assertDec("38625.00", *got.PreliminaryCost, "stored cost")
}

func (igts *IntegrationGinTestSuite) TestQuote() {
	igts.Fx.Tariff(igts.T(), "5000", "45", "3.5", "150")
	ct := igts.Fx.CargoType(igts.T(), "1.2")
	rq := igts.Fx.Requirement(igts.T(), "150")

	b := &model.PriceBreakdown{}
	w := igts.send(http.MethodPost, "/quotes", map[string]any{
		"pickup_date":   "2024-03-01T08:00:00Z",
		"delivery_date": "2024-03-02T18:00:00Z",
		"distance_km":   700,
		"cargo": []map[string]any{{
			"name":            "glass",
			"weight_kg":       "500",
			"volume_m3":       "2.5",
			"cargo_type_id":   ct.ID.String(),
			"requirement_ids": []string{rq.ID.String()},
		}},
	}, b)
	igts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	igts.assertDec("7300", b.CargoTypeSurcharge, "cargo type")
	igts.assertDec("150", b.RequirementsSurcharge, "requirements")
	igts.assertDec("46075.00", b.PreliminaryCost, "total")
	igts.Equal(0, igts.Fx.Count(igts.T(), "requests", "true"))
}

func (igts *IntegrationGinTestSuite) allocate(
	r *model.Request, d *model.Driver, v *model.Vehicle, w model.Window,
	res any,
) *httptest.ResponseRecorder {
	return igts.send(http.MethodPost, "/shipments", map[string]any{
		"request_id":       r.ID.String(),
		"driver_id":        d.ID.String(),
		"vehicle_id":       v.ID.String(),
		"planned_pickup":   rfc3339(w.Start),
		"planned_delivery": rfc3339(w.End),
	}, res)
}

func (igts *IntegrationGinTestSuite) TestAllocationConflict() {
	ct := igts.Fx.CargoType(igts.T(), "1.0")
	d := igts.Fx.Driver(igts.T())
	v := igts.Fx.Vehicle(igts.T(), "10000", "40")
	v2 := igts.Fx.Vehicle(igts.T(), "10000", "40")
	r1 := igts.Fx.Request(igts.T(), fixture.Days(1, 5), "100",
		fixture.Cargo("500", "5", ct))
	r2 := igts.Fx.Request(igts.T(), fixture.Days(3, 6), "100",
		fixture.Cargo("300", "8", ct))

	s := &model.Shipment{}
	w := igts.allocate(r1, d, v, fixture.Days(1, 5), s)
	igts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	igts.Equal(model.ShipmentPlanned, s.Status)

	res := &errResp{}
	w = igts.allocate(r2, d, v2, fixture.Days(3, 6), res)
	igts.Equal(http.StatusConflict, w.Code, w.Body.String())
	igts.Equal("conflict", res.Kind)
	igts.Equal(
		0, igts.Fx.Count(igts.T(), "shipments", "request_id = ?", r2.ID),
		"refused allocation must not leave a shipment",
	)

	got := &model.Driver{}
	w = igts.send(http.MethodGet, "/drivers/"+d.ID.String(), nil, got)
	igts.Require().Equal(http.StatusOK, w.Code)
	igts.False(got.Available, "driver must remain reserved")
}

func (igts *IntegrationGinTestSuite) TestAvailability() {
	ct := igts.Fx.CargoType(igts.T(), "1.0")
	d := igts.Fx.Driver(igts.T())
	v := igts.Fx.Vehicle(igts.T(), "10000", "40")
	r := igts.Fx.Request(igts.T(), fixture.Days(1, 5), "100",
		fixture.Cargo("500", "5", ct))
	s := &model.Shipment{}
	w := igts.allocate(r, d, v, fixture.Days(1, 5), s)
	igts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	query := func(id uuid.UUID, start, end int) string {
		return "/availability?kind=vehicle&id=" + id.String() +
			"&start=" + rfc3339(fixture.March(start)) +
			"&end=" + rfc3339(fixture.March(end))
	}
	res := &errResp{}
	w = igts.send(http.MethodGet, query(v.ID, 4, 8), nil, res)
	igts.Equal(http.StatusConflict, w.Code, w.Body.String())
	igts.Require().NotNil(res.ConflictingID)
	igts.Equal(s.ID, *res.ConflictingID)

	free := igts.Fx.Vehicle(igts.T(), "10000", "40")
	ok := map[string]any{}
	w = igts.send(http.MethodGet, query(free.ID, 4, 8), nil, &ok)
	igts.Equal(http.StatusOK, w.Code, w.Body.String())
	igts.Equal(true, ok["available"])
}

func (igts *IntegrationGinTestSuite) TestConsolidation() {
	ct := igts.Fx.CargoType(igts.T(), "1.0")
	var ids []uuid.UUID
	for _, c := range []model.Cargo{
		fixture.Cargo("500", "5", ct),
		fixture.Cargo("300", "8", ct),
	} {
		d := igts.Fx.Driver(igts.T())
		v := igts.Fx.Vehicle(igts.T(), "10000", "40")
		r := igts.Fx.Request(igts.T(), fixture.Days(1, 5), "100", c)
		s := &model.Shipment{}
		w := igts.allocate(r, d, v, fixture.Days(1, 5), s)
		igts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, s.ID)
	}

	l := &model.LtlShipment{}
	w := igts.send(http.MethodPost, "/consolidations", map[string]any{
		"voyage_code":  "V-1",
		"departure":    rfc3339(fixture.March(1)),
		"arrival":      rfc3339(fixture.March(6)),
		"shipment_ids": []string{ids[0].String(), ids[1].String()},
	}, l)
	igts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	igts.Equal(model.LtlConsolidating, l.Status)
	igts.assertDec("800", l.ConsolidatedWeightKg, "weight")
	igts.assertDec("13", l.ConsolidatedVolumeM3, "volume")
	igts.ElementsMatch(ids, l.MemberIDs)

	path := "/consolidations/" + l.ID.String()
	w = igts.send(http.MethodPatch, path+"/members", map[string]any{
		"remove": []string{ids[0].String()},
	}, l)
	igts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	igts.assertDec("300", l.ConsolidatedWeightKg, "weight")
	igts.assertDec("8", l.ConsolidatedVolumeM3, "volume")
	igts.Equal([]uuid.UUID{ids[1]}, l.MemberIDs)

	s := &model.Shipment{}
	w = igts.send(http.MethodGet, "/shipments/"+ids[0].String(), nil, s)
	igts.Require().Equal(http.StatusOK, w.Code)
	igts.Equal(model.ShipmentPlanned, s.Status)
	igts.Nil(s.LtlShipmentID)

	for _, st := range []string{"in_transit", "completed"} {
		w = igts.send(http.MethodPatch, path, map[string]any{
			"status": st,
		}, l)
		igts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}
	res := &errResp{}
	w = igts.send(http.MethodPatch, path, map[string]any{
		"status": "in_transit",
	}, res)
	igts.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	igts.Equal("invalid_transition", res.Kind)
	igts.True(strings.Contains(res.Detail, "completed"), res.Detail)
}

func (igts *IntegrationGinTestSuite) TestShipmentLifecycle() {
	ct := igts.Fx.CargoType(igts.T(), "1.0")
	d := igts.Fx.Driver(igts.T())
	v := igts.Fx.Vehicle(igts.T(), "10000", "40")
	r := igts.Fx.Request(igts.T(), fixture.Days(1, 5), "100",
		fixture.Cargo("500", "5", ct))
	s := &model.Shipment{}
	w := igts.allocate(r, d, v, fixture.Days(1, 5), s)
	igts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	path := "/shipments/" + s.ID.String()

	res := &errResp{}
	w = igts.send(http.MethodDelete, path, nil, res)
	igts.Equal(http.StatusConflict, w.Code, "planned shipment is deleted")

	for _, st := range []string{"in_transit", "delivered"} {
		w = igts.send(http.MethodPatch, path, map[string]any{
			"status": st,
		}, s)
		igts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}
	igts.NotNil(s.ActualPickup)
	igts.NotNil(s.ActualDelivery)
	got := &model.Vehicle{}
	w = igts.send(http.MethodGet, "/vehicles/"+v.ID.String(), nil, got)
	igts.Require().Equal(http.StatusOK, w.Code)
	igts.True(got.Available, "delivery must release the vehicle")

	w = igts.send(http.MethodPatch, path, map[string]any{
		"status": "planned",
	}, res)
	igts.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = igts.send(http.MethodPatch, path, map[string]any{
		"status": "pod_received",
	}, s)
	igts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = igts.send(http.MethodDelete, path, nil, nil)
	igts.Equal(http.StatusNoContent, w.Code, w.Body.String())
	w = igts.send(http.MethodGet, path, nil, res)
	igts.Equal(http.StatusNotFound, w.Code)
}

func (igts *IntegrationGinTestSuite) TestMetrics() {
	igts.send(http.MethodGet, "/requests/"+uuid.NewString(), nil, nil)
	req, err := http.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	igts.Require().NoError(err)
	w := httptest.NewRecorder()
	igts.Gin.ServeHTTP(w, req)
	igts.Equal(http.StatusOK, w.Code)
	igts.Contains(w.Body.String(), "fdweb_http_requests_total")
}
