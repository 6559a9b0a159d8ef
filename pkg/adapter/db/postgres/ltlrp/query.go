// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ltlrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/adapter/db/postgres/requestsrp"
	"github.com/momeni/freight/pkg/adapter/db/postgres/shipmentsrp"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type gLtl struct {
	ID                 uuid.UUID `gorm:"primaryKey;type:uuid"`
	VoyageCode         string
	Status             string
	DepartureAt        time.Time
	ArrivalAt          time.Time
	ConsolidatedWeight decimal.Decimal `gorm:"type:numeric"`
	ConsolidatedVolume decimal.Decimal `gorm:"type:numeric"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (gl *gLtl) TableName() string {
	return "ltl_shipments"
}

func (gl *gLtl) Model() (*model.LtlShipment, error) {
	st, err := model.ParseLtlStatus(gl.Status)
	if err != nil {
		return nil, fmt.Errorf("ltl shipment %s: %w", gl.ID, err)
	}
	return &model.LtlShipment{
		ID:                   gl.ID,
		VoyageCode:           gl.VoyageCode,
		Status:               st,
		Departure:            gl.DepartureAt,
		Arrival:              gl.ArrivalAt,
		ConsolidatedWeightKg: gl.ConsolidatedWeight,
		ConsolidatedVolumeM3: gl.ConsolidatedVolume,
		CreatedAt:            gl.CreatedAt,
		UpdatedAt:            gl.UpdatedAt,
	}, nil
}

// Create inserts l. Voyage codes are unique.
func Create(ctx context.Context, tx *postgres.Tx, l *model.LtlShipment) error {
	gl := &gLtl{
		ID:                 l.ID,
		VoyageCode:         l.VoyageCode,
		Status:             l.Status.String(),
		DepartureAt:        l.Departure,
		ArrivalAt:          l.Arrival,
		ConsolidatedWeight: l.ConsolidatedWeightKg,
		ConsolidatedVolume: l.ConsolidatedVolumeM3,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
	err := tx.GORM(ctx).Create(gl).Error
	return postgres.Classify(err, "voyage "+l.VoyageCode)
}

// Get loads the id voyage with its member ids.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.LtlShipment, error) {
	return get(ctx, q, id, false)
}

// GetForUpdate is like Get, but locks the voyage row.
func GetForUpdate(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (*model.LtlShipment, error) {
	return get(ctx, tx, id, true)
}

func get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID, lock bool,
) (*model.LtlShipment, error) {
	stmt := q.GORM(ctx).Where("id=?", id)
	if lock {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var gl gLtl
	if err := stmt.Take(&gl).Error; err != nil {
		return nil, postgres.Classify(err, "voyage "+id.String())
	}
	l, err := gl.Model()
	if err != nil {
		return nil, err
	}
	members, err := shipmentsrp.ByLtl(ctx, q, id)
	if err != nil {
		return nil, err
	}
	l.MemberIDs = make([]uuid.UUID, 0, len(members))
	for _, s := range members {
		l.MemberIDs = append(l.MemberIDs, s.ID)
	}
	return l, nil
}

// Members loads the member shipments of the id voyage with the cargo
// of their requests.
func Members(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) ([]model.Member, error) {
	ss, err := shipmentsrp.ByLtl(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	members := make([]model.Member, 0, len(ss))
	for _, s := range ss {
		cargo, err := requestsrp.Cargo(ctx, tx, s.RequestID)
		if err != nil {
			return nil, fmt.Errorf("cargo of shipment %s: %w", s.ID, err)
		}
		members = append(members, model.Member{Shipment: s, Cargo: cargo})
	}
	return members, nil
}

// SaveAggregates stores the consolidated weight and volume.
func SaveAggregates(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID, l model.Load,
) error {
	res := tx.GORM(ctx).Model(&gLtl{}).Where("id=?", id).Updates(
		map[string]any{
			"consolidated_weight": l.WeightKg,
			"consolidated_volume": l.VolumeM3,
			"updated_at":          time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "voyage "+id.String())
}

// UpdateStatus sets the status of the id voyage.
func UpdateStatus(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID, s model.LtlStatus,
) error {
	res := tx.GORM(ctx).Model(&gLtl{}).Where("id=?", id).Updates(
		map[string]any{
			"status":     s.String(),
			"updated_at": time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "voyage "+id.String())
}
