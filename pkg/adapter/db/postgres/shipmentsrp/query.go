// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package shipmentsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/model"
	"gorm.io/gorm"
)

type gShipment struct {
	ID              uuid.UUID  `gorm:"primaryKey;type:uuid"`
	RequestID       uuid.UUID  `gorm:"type:uuid"`
	DriverID        uuid.UUID  `gorm:"type:uuid"`
	VehicleID       uuid.UUID  `gorm:"type:uuid"`
	LtlShipmentID   *uuid.UUID `gorm:"type:uuid"`
	PlannedPickup   time.Time
	PlannedDelivery time.Time
	ActualPickup    *time.Time
	ActualDelivery  *time.Time
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt
}

func (gs *gShipment) TableName() string {
	return "shipments"
}

func (gs *gShipment) Model() (*model.Shipment, error) {
	st, err := model.ParseShipmentStatus(gs.Status)
	if err != nil {
		return nil, fmt.Errorf("shipment %s: %w", gs.ID, err)
	}
	return &model.Shipment{
		ID:            gs.ID,
		RequestID:     gs.RequestID,
		DriverID:      gs.DriverID,
		VehicleID:     gs.VehicleID,
		LtlShipmentID: gs.LtlShipmentID,
		Planned: model.Window{
			Start: gs.PlannedPickup,
			End:   gs.PlannedDelivery,
		},
		ActualPickup:   gs.ActualPickup,
		ActualDelivery: gs.ActualDelivery,
		Status:         st,
		CreatedAt:      gs.CreatedAt,
		UpdatedAt:      gs.UpdatedAt,
	}, nil
}

func models(gss []gShipment) ([]model.Shipment, error) {
	ss := make([]model.Shipment, 0, len(gss))
	for i := range gss {
		s, err := gss[i].Model()
		if err != nil {
			return nil, err
		}
		ss = append(ss, *s)
	}
	return ss, nil
}

// Get loads the id shipment unless it is deleted.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Shipment, error) {
	var gs gShipment
	err := q.GORM(ctx).Where("id=?", id).Take(&gs).Error
	if err != nil {
		return nil, postgres.Classify(err, "shipment "+id.String())
	}
	return gs.Model()
}

// GetForUpdate is like Get, but locks the shipment row.
func GetForUpdate(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (*model.Shipment, error) {
	var gs gShipment
	err := tx.ForUpdate(ctx).Where("id=?", id).Take(&gs).Error
	if err != nil {
		return nil, postgres.Classify(err, "shipment "+id.String())
	}
	return gs.Model()
}

// ForRequest finds the shipment of requestID, including the deleted
// ones, because the request remains allocated after that deletion.
func ForRequest[Q postgres.Queryer](
	ctx context.Context, q Q, requestID uuid.UUID,
) (*uuid.UUID, error) {
	var ids []uuid.UUID
	err := q.GORM(ctx).Unscoped().Model(&gShipment{}).Where(
		"request_id=?", requestID,
	).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("querying shipment of request: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

// ByLtl loads the members of the ltlID voyage, ordered by id.
func ByLtl[Q postgres.Queryer](
	ctx context.Context, q Q, ltlID uuid.UUID,
) ([]model.Shipment, error) {
	var gss []gShipment
	err := q.GORM(ctx).Where(
		"ltl_shipment_id=?", ltlID,
	).Order("id").Find(&gss).Error
	if err != nil {
		return nil, fmt.Errorf("querying voyage members: %w", err)
	}
	return models(gss)
}

// Create inserts s. A second shipment of the same request violates
// the unique request_id index and causes a Conflict error.
func Create(ctx context.Context, tx *postgres.Tx, s *model.Shipment) error {
	gs := &gShipment{
		ID:              s.ID,
		RequestID:       s.RequestID,
		DriverID:        s.DriverID,
		VehicleID:       s.VehicleID,
		LtlShipmentID:   s.LtlShipmentID,
		PlannedPickup:   s.Planned.Start,
		PlannedDelivery: s.Planned.End,
		ActualPickup:    s.ActualPickup,
		ActualDelivery:  s.ActualDelivery,
		Status:          s.Status.String(),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	err := tx.GORM(ctx).Create(gs).Error
	return postgres.Classify(err, "shipment of request "+s.RequestID.String())
}

// LockMany locks the given shipments in the order of their ids.
func LockMany(
	ctx context.Context, tx *postgres.Tx, ids []uuid.UUID,
) ([]model.Shipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var gss []gShipment
	err := tx.ForUpdate(ctx).Where("id IN ?", ids).Order("id").Find(&gss).Error
	if err != nil {
		return nil, fmt.Errorf("locking shipments: %w", err)
	}
	found := make(map[uuid.UUID]bool, len(gss))
	for _, gs := range gss {
		found[gs.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, cerr.NotFoundf("shipment %s is not found", id)
		}
	}
	return models(gss)
}

// UpdateStatus persists the status and actual times of s.
func UpdateStatus(ctx context.Context, tx *postgres.Tx, s *model.Shipment) error {
	res := tx.GORM(ctx).Model(&gShipment{}).Where("id=?", s.ID).Updates(
		map[string]any{
			"status":          s.Status.String(),
			"actual_pickup":   s.ActualPickup,
			"actual_delivery": s.ActualDelivery,
			"updated_at":      time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "shipment "+s.ID.String())
}

// Link makes ids members of the ltlID voyage.
func Link(
	ctx context.Context, tx *postgres.Tx, ids []uuid.UUID, ltlID uuid.UUID,
) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.GORM(ctx).Model(&gShipment{}).Where("id IN ?", ids).Updates(
		map[string]any{
			"ltl_shipment_id": ltlID,
			"status":          model.ShipmentConsolidated.String(),
			"updated_at":      time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "shipments")
}

// Unlink removes ids from their voyage. Consolidated ones go back to
// the planned status.
func Unlink(ctx context.Context, tx *postgres.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	res := tx.GORM(ctx).Model(&gShipment{}).Where("id IN ?", ids).Updates(
		map[string]any{
			"ltl_shipment_id": nil,
			"status": gorm.Expr(
				"CASE WHEN status=? THEN ? ELSE status END",
				model.ShipmentConsolidated.String(),
				model.ShipmentPlanned.String(),
			),
			"updated_at": time.Now().UTC(),
		},
	)
	return postgres.Affected(res, "shipments")
}

// SoftDelete sets the deleted_at of the id shipment.
func SoftDelete(ctx context.Context, tx *postgres.Tx, id uuid.UUID) error {
	res := tx.GORM(ctx).Where("id=?", id).Delete(&gShipment{})
	return postgres.Affected(res, "shipment "+id.String())
}
