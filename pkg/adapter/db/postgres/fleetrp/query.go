// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleetrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/freight/pkg/adapter/db/postgres"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/shopspring/decimal"
)

type gDriver struct {
	ID            uuid.UUID `gorm:"primaryKey;type:uuid"`
	Name          string
	LicenseNumber string
	Phone         string
	Available     bool
	Status        string
}

func (gd *gDriver) TableName() string {
	return "drivers"
}

func (gd *gDriver) Model() *model.Driver {
	return &model.Driver{
		ID:            gd.ID,
		Name:          gd.Name,
		LicenseNumber: gd.LicenseNumber,
		Phone:         gd.Phone,
		Available:     gd.Available,
		Status:        gd.Status,
	}
}

type gVehicle struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	PlateNumber string
	Model       string
	PayloadKg   decimal.Decimal `gorm:"type:numeric"`
	VolumeM3    decimal.Decimal `gorm:"type:numeric;column:volume_m3"`
	Available   bool
	Status      string
}

func (gv *gVehicle) TableName() string {
	return "vehicles"
}

func (gv *gVehicle) Vehicle() *model.Vehicle {
	return &model.Vehicle{
		ID:          gv.ID,
		PlateNumber: gv.PlateNumber,
		Model:       gv.Model,
		PayloadKg:   gv.PayloadKg,
		VolumeM3:    gv.VolumeM3,
		Available:   gv.Available,
		Status:      gv.Status,
	}
}

type gMaintenance struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	VehicleID uuid.UUID `gorm:"type:uuid"`
	StartsAt  time.Time
	EndsAt    *time.Time
	Note      string
}

func (gm *gMaintenance) TableName() string {
	return "maintenance_windows"
}

func (gm *gMaintenance) Model() model.MaintenanceWindow {
	return model.MaintenanceWindow{
		ID:        gm.ID,
		VehicleID: gm.VehicleID,
		Window:    model.OpenWindow{Start: gm.StartsAt, End: gm.EndsAt},
		Note:      gm.Note,
	}
}

// GetDriver loads the id driver.
func GetDriver[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Driver, error) {
	var gd gDriver
	err := q.GORM(ctx).Where("id=?", id).Take(&gd).Error
	if err != nil {
		return nil, postgres.Classify(err, "driver "+id.String())
	}
	return gd.Model(), nil
}

// LockDriver loads the id driver with a FOR UPDATE row lock.
func LockDriver(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (*model.Driver, error) {
	var gd gDriver
	err := tx.ForUpdate(ctx).Where("id=?", id).Take(&gd).Error
	if err != nil {
		return nil, postgres.Classify(err, "driver "+id.String())
	}
	return gd.Model(), nil
}

// GetVehicle loads the id vehicle with its maintenance windows.
func GetVehicle[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Vehicle, error) {
	gdb := q.GORM(ctx)
	var gv gVehicle
	if err := gdb.Where("id=?", id).Take(&gv).Error; err != nil {
		return nil, postgres.Classify(err, "vehicle "+id.String())
	}
	var gms []gMaintenance
	err := gdb.Where("vehicle_id=?", id).Order("starts_at").Find(&gms).Error
	if err != nil {
		return nil, fmt.Errorf("querying maintenance windows: %w", err)
	}
	v := gv.Vehicle()
	for i := range gms {
		v.Maintenance = append(v.Maintenance, gms[i].Model())
	}
	return v, nil
}

// LockVehicle loads the id vehicle with a FOR UPDATE row lock.
func LockVehicle(
	ctx context.Context, tx *postgres.Tx, id uuid.UUID,
) (*model.Vehicle, error) {
	var gv gVehicle
	err := tx.ForUpdate(ctx).Where("id=?", id).Take(&gv).Error
	if err != nil {
		return nil, postgres.Classify(err, "vehicle "+id.String())
	}
	return gv.Vehicle(), nil
}

// CreateDriver inserts d. License numbers are unique.
func CreateDriver(ctx context.Context, tx *postgres.Tx, d *model.Driver) error {
	gd := &gDriver{
		ID:            d.ID,
		Name:          d.Name,
		LicenseNumber: d.LicenseNumber,
		Phone:         d.Phone,
		Available:     d.Available,
		Status:        d.Status,
	}
	err := tx.GORM(ctx).Create(gd).Error
	return postgres.Classify(err, "driver "+d.LicenseNumber)
}

// CreateVehicle inserts v without its maintenance windows.
// Plate numbers are unique.
func CreateVehicle(ctx context.Context, tx *postgres.Tx, v *model.Vehicle) error {
	gv := &gVehicle{
		ID:          v.ID,
		PlateNumber: v.PlateNumber,
		Model:       v.Model,
		PayloadKg:   v.PayloadKg,
		VolumeM3:    v.VolumeM3,
		Available:   v.Available,
		Status:      v.Status,
	}
	err := tx.GORM(ctx).Create(gv).Error
	return postgres.Classify(err, "vehicle "+v.PlateNumber)
}

// AddMaintenance inserts mw.
func AddMaintenance(
	ctx context.Context, tx *postgres.Tx, mw *model.MaintenanceWindow,
) error {
	gm := &gMaintenance{
		ID:        mw.ID,
		VehicleID: mw.VehicleID,
		StartsAt:  mw.Window.Start,
		EndsAt:    mw.Window.End,
		Note:      mw.Note,
	}
	err := tx.GORM(ctx).Create(gm).Error
	return postgres.Classify(err, "maintenance of "+mw.VehicleID.String())
}

// SetAvailable updates the availability flag and status label of the
// id row of the tbl table (a *gDriver or *gVehicle).
func SetAvailable(
	ctx context.Context, tx *postgres.Tx, tbl interface{ TableName() string },
	id uuid.UUID, available bool,
) error {
	res := tx.GORM(ctx).Table(tbl.TableName()).Where("id=?", id).Updates(
		map[string]any{
			"available": available,
			"status":    model.AvailabilityLabel(available),
		},
	)
	return postgres.Affected(res, tbl.TableName()+" "+id.String())
}
