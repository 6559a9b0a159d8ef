// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package requestsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/catalogrp"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type gRequest struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	CompanyID       uuid.UUID `gorm:"type:uuid"`
	CreatorID       uuid.UUID `gorm:"type:uuid"`
	PickupAddress   string
	DeliveryAddress string
	PickupDate      time.Time
	DeliveryDate    time.Time
	DistanceKm      decimal.Decimal     `gorm:"type:numeric"`
	PreliminaryCost decimal.NullDecimal `gorm:"type:numeric"`
	FinalCost       decimal.NullDecimal `gorm:"type:numeric"`
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (gr *gRequest) TableName() string {
	return "requests"
}

func (gr *gRequest) Model() (*model.Request, error) {
	st, err := model.ParseRequestStatus(gr.Status)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", gr.ID, err)
	}
	return &model.Request{
		ID:              gr.ID,
		CompanyID:       gr.CompanyID,
		CreatorID:       gr.CreatorID,
		PickupAddress:   gr.PickupAddress,
		DeliveryAddress: gr.DeliveryAddress,
		PickupDate:      gr.PickupDate,
		DeliveryDate:    gr.DeliveryDate,
		DistanceKm:      gr.DistanceKm,
		PreliminaryCost: nullable(gr.PreliminaryCost),
		FinalCost:       nullable(gr.FinalCost),
		Status:          st,
		CreatedAt:       gr.CreatedAt,
		UpdatedAt:       gr.UpdatedAt,
	}, nil
}

type gCargo struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	RequestID   uuid.UUID `gorm:"type:uuid"`
	Position    int
	Name        string
	WeightKg    decimal.Decimal `gorm:"type:numeric"`
	VolumeM3    decimal.Decimal `gorm:"type:numeric;column:volume_m3"`
	CargoTypeID uuid.UUID       `gorm:"type:uuid"`
}

func (gc *gCargo) TableName() string {
	return "cargo"
}

type gCargoRequirement struct {
	CargoID       uuid.UUID `gorm:"primaryKey;type:uuid"`
	RequirementID uuid.UUID `gorm:"primaryKey;type:uuid"`
}

func (gcr *gCargoRequirement) TableName() string {
	return "cargo_requirements"
}

func nullable(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// Create inserts r with its cargo items and their requirements.
func Create(ctx context.Context, tx *postgres.Tx, r *model.Request) error {
	gdb := tx.GORM(ctx)
	gr := &gRequest{
		ID:              r.ID,
		CompanyID:       r.CompanyID,
		CreatorID:       r.CreatorID,
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		PickupDate:      r.PickupDate,
		DeliveryDate:    r.DeliveryDate,
		DistanceKm:      r.DistanceKm,
		PreliminaryCost: nullDecimal(r.PreliminaryCost),
		FinalCost:       nullDecimal(r.FinalCost),
		Status:          r.Status.String(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	what := "request " + r.ID.String()
	if err := gdb.Create(gr).Error; err != nil {
		return postgres.Classify(err, what)
	}
	if len(r.Cargo) == 0 {
		return nil
	}
	gcs := make([]gCargo, 0, len(r.Cargo))
	var gcrs []gCargoRequirement
	for i, c := range r.Cargo {
		gcs = append(gcs, gCargo{
			ID:          c.ID,
			RequestID:   r.ID,
			Position:    i,
			Name:        c.Name,
			WeightKg:    c.WeightKg,
			VolumeM3:    c.VolumeM3,
			CargoTypeID: c.Type.ID,
		})
		for _, rq := range c.Requirements {
			gcrs = append(gcrs, gCargoRequirement{
				CargoID:       c.ID,
				RequirementID: rq.ID,
			})
		}
	}
	if err := gdb.Create(&gcs).Error; err != nil {
		return postgres.Classify(err, what+" cargo")
	}
	if len(gcrs) == 0 {
		return nil
	}
	if err := gdb.Create(&gcrs).Error; err != nil {
		return postgres.Classify(err, what+" cargo requirements")
	}
	return nil
}

// Get loads the id request with its cargo.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Request, error) {
	return get(ctx, q, id, false)
}

// GetForUpdate is like Get, but locks the request row.
func GetForUpdate(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (*model.Request, error) {
	return get(ctx, tx, id, true)
}

func get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID, lock bool,
) (*model.Request, error) {
	gdb := q.GORM(ctx)
	stmt := gdb.Where("id=?", id)
	if lock {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var gr gRequest
	if err := stmt.Take(&gr).Error; err != nil {
		return nil, postgres.Classify(err, "request "+id.String())
	}
	r, err := gr.Model()
	if err != nil {
		return nil, err
	}
	r.Cargo, err = Cargo(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Cargo loads the cargo items of the requestID request in their
// original order, resolving their cargo types and requirements.
func Cargo[Q postgres.Queryer](
	ctx context.Context, q Q, requestID uuid.UUID,
) ([]model.Cargo, error) {
	gdb := q.GORM(ctx)
	var gcs []gCargo
	err := gdb.Where("request_id=?", requestID).Order("position").Find(&gcs).Error
	if err != nil {
		return nil, fmt.Errorf("querying cargo: %w", err)
	}
	if len(gcs) == 0 {
		return []model.Cargo{}, nil
	}
	cargoIDs := make([]uuid.UUID, 0, len(gcs))
	typeIDs := make([]uuid.UUID, 0, len(gcs))
	for _, gc := range gcs {
		cargoIDs = append(cargoIDs, gc.ID)
		typeIDs = append(typeIDs, gc.CargoTypeID)
	}
	var gcrs []gCargoRequirement
	err = gdb.Where("cargo_id IN ?", cargoIDs).Order("requirement_id").Find(&gcrs).Error
	if err != nil {
		return nil, fmt.Errorf("querying cargo requirements: %w", err)
	}
	rqIDs := make([]uuid.UUID, 0, len(gcrs))
	for _, gcr := range gcrs {
		rqIDs = append(rqIDs, gcr.RequirementID)
	}
	types, err := catalogrp.CargoTypes(ctx, q, typeIDs)
	if err != nil {
		return nil, err
	}
	rqs, err := catalogrp.Requirements(ctx, q, rqIDs)
	if err != nil {
		return nil, err
	}
	byCargo := make(map[uuid.UUID][]model.Requirement, len(gcs))
	for _, gcr := range gcrs {
		byCargo[gcr.CargoID] = append(
			byCargo[gcr.CargoID], rqs[gcr.RequirementID],
		)
	}
	cc := make([]model.Cargo, 0, len(gcs))
	for _, gc := range gcs {
		cc = append(cc, model.Cargo{
			ID:           gc.ID,
			Name:         gc.Name,
			WeightKg:     gc.WeightKg,
			VolumeM3:     gc.VolumeM3,
			Type:         types[gc.CargoTypeID],
			Requirements: byCargo[gc.ID],
		})
	}
	return cc, nil
}

// UpdateStatus sets the status of the id request.
func UpdateStatus(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID, s model.RequestStatus,
) error {
	res := tx.GORM(ctx).Model(&gRequest{}).Where("id=?", id).Updates(
		map[string]any{
			"status":     s.String(),
			"updated_at": time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "request "+id.String())
}

// Complete moves the id request into the completed status.
func Complete(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
	finalCost *decimal.Decimal,
) error {
	res := tx.GORM(ctx).Model(&gRequest{}).Where("id=?", id).Updates(
		map[string]any{
			"status":     model.RequestCompleted.String(),
			"final_cost": nullDecimal(finalCost),
			"updated_at": time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "request "+id.String())
}

// SetPreliminaryCost stores the computed price of the id request.
func SetPreliminaryCost(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID, cost decimal.Decimal,
) error {
	res := tx.GORM(ctx).Model(&gRequest{}).Where("id=?", id).Updates(
		map[string]any{
			"preliminary_cost": cost,
			"updated_at":       time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "request "+id.String())
}
