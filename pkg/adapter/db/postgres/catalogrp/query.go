// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package catalogrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/cerr"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

type gCargoType struct {
	ID         uuid.UUID       `gorm:"primaryKey;type:uuid"`
	Name       string
	Multiplier decimal.Decimal `gorm:"type:numeric"`
}

func (gct *gCargoType) TableName() string {
	return "cargo_types"
}

func (gct *gCargoType) Model() model.CargoType {
	return model.CargoType{
		ID:         gct.ID,
		Name:       gct.Name,
		Multiplier: gct.Multiplier,
	}
}

type gRequirement struct {
	ID      uuid.UUID       `gorm:"primaryKey;type:uuid"`
	Name    string
	FlatFee decimal.Decimal `gorm:"type:numeric"`
}

func (grq *gRequirement) TableName() string {
	return "requirements"
}

func (grq *gRequirement) Model() model.Requirement {
	return model.Requirement{
		ID:      grq.ID,
		Name:    grq.Name,
		FlatFee: grq.FlatFee,
	}
}

type gTariff struct {
	ID        uuid.UUID       `gorm:"primaryKey;type:uuid"`
	Name      string
	BaseFee   decimal.Decimal `gorm:"type:numeric;column:base_fee"`
	CostPerKm decimal.Decimal `gorm:"type:numeric;column:cost_per_km"`
	CostPerKg decimal.Decimal `gorm:"type:numeric;column:cost_per_kg"`
	CostPerM3 decimal.Decimal `gorm:"type:numeric;column:cost_per_m3"`
	Active    bool
	CreatedAt time.Time
}

func (gt *gTariff) TableName() string {
	return "tariffs"
}

func (gt *gTariff) Model() *model.Tariff {
	return &model.Tariff{
		ID:        gt.ID,
		Name:      gt.Name,
		BaseFee:   gt.BaseFee,
		CostPerKm: gt.CostPerKm,
		CostPerKg: gt.CostPerKg,
		CostPerM3: gt.CostPerM3,
		Active:    gt.Active,
		CreatedAt: gt.CreatedAt,
	}
}

// ActiveTariff returns the single active tariff.
func ActiveTariff[Q postgres.Queryer](
	ctx context.Context, q Q,
) (*model.Tariff, error) {
	var gt gTariff
	err := q.GORM(ctx).Where("active").Take(&gt).Error
	if err != nil {
		return nil, postgres.Classify(err, "active tariff")
	}
	return gt.Model(), nil
}

// CargoTypes loads the cargo types with the given ids.
func CargoTypes[Q postgres.Queryer](
	ctx context.Context, q Q, ids []uuid.UUID,
) (map[uuid.UUID]model.CargoType, error) {
	m := make(map[uuid.UUID]model.CargoType, len(ids))
	if len(ids) == 0 {
		return m, nil
	}
	var gcts []gCargoType
	err := q.GORM(ctx).Where("id IN ?", ids).Find(&gcts).Error
	if err != nil {
		return nil, fmt.Errorf("querying cargo types: %w", err)
	}
	for i := range gcts {
		m[gcts[i].ID] = gcts[i].Model()
	}
	for _, id := range ids {
		if _, ok := m[id]; !ok {
			return nil, cerr.NotFoundf("cargo type %s is not found", id)
		}
	}
	return m, nil
}

// Requirements loads the requirements with the given ids.
func Requirements[Q postgres.Queryer](
	ctx context.Context, q Q, ids []uuid.UUID,
) (map[uuid.UUID]model.Requirement, error) {
	m := make(map[uuid.UUID]model.Requirement, len(ids))
	if len(ids) == 0 {
		return m, nil
	}
	var grqs []gRequirement
	err := q.GORM(ctx).Where("id IN ?", ids).Find(&grqs).Error
	if err != nil {
		return nil, fmt.Errorf("querying requirements: %w", err)
	}
	for i := range grqs {
		m[grqs[i].ID] = grqs[i].Model()
	}
	for _, id := range ids {
		if _, ok := m[id]; !ok {
			return nil, cerr.NotFoundf("requirement %s is not found", id)
		}
	}
	return m, nil
}

// CreateTariff inserts t. It is not activated even if t.Active is set.
func CreateTariff(ctx context.Context, tx *postgres.Tx, t *model.Tariff) error {
	gt := &gTariff{
		ID:        t.ID,
		Name:      t.Name,
		BaseFee:   t.BaseFee,
		CostPerKm: t.CostPerKm,
		CostPerKg: t.CostPerKg,
		CostPerM3: t.CostPerM3,
		CreatedAt: t.CreatedAt,
	}
	err := tx.GORM(ctx).Create(gt).Error
	return postgres.Classify(err, "tariff "+t.Name)
}

// CreateCargoType inserts ct. Names are unique.
func CreateCargoType(
	ctx context.Context, tx *postgres.Tx, ct *model.CargoType,
) error {
	gct := &gCargoType{ID: ct.ID, Name: ct.Name, Multiplier: ct.Multiplier}
	err := tx.GORM(ctx).Create(gct).Error
	return postgres.Classify(err, "cargo type "+ct.Name)
}

// CreateRequirement inserts rq. Names are unique.
func CreateRequirement(
	ctx context.Context, tx *postgres.Tx, rq *model.Requirement,
) error {
	grq := &gRequirement{ID: rq.ID, Name: rq.Name, FlatFee: rq.FlatFee}
	err := tx.GORM(ctx).Create(grq).Error
	return postgres.Classify(err, "requirement "+rq.Name)
}

// ActivateTariff makes id the single active tariff. Other tariffs are
// deactivated before, so the partial unique index on the active column
// is never violated by this transaction itself.
func ActivateTariff(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (*model.Tariff, error) {
	what := "tariff " + id.String()
	gdb := tx.GORM(ctx)
	var gt gTariff
	err := tx.ForUpdate(ctx).Where("id=?", id).Take(&gt).Error
	if err != nil {
		return nil, postgres.Classify(err, what)
	}
	err = gdb.Model(&gTariff{}).Where(
		"active AND id<>?", id,
	).Update("active", false).Error
	if err != nil {
		return nil, postgres.Classify(err, "deactivating tariffs")
	}
	err = gdb.Model(&gTariff{}).Where("id=?", id).Update("active", true).Error
	if err != nil {
		return nil, postgres.Classify(err, what)
	}
	gt.Active = true
	return gt.Model(), nil
}
