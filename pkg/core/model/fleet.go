// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResourceKind distinguishes the two allocatable resources.
type ResourceKind int

// Valid values for the ResourceKind enum.
const (
	ResourceKindInvalid ResourceKind = iota // zero value is invalid

	ResourceDriver
	ResourceVehicle
)

// String returns "driver" or "vehicle". Invalid values cause a panic.
func (k ResourceKind) String() string {
	switch k {
	case ResourceDriver:
		return "driver"
	case ResourceVehicle:
		return "vehicle"
	default:
		panic(fmt.Sprintf("invalid resource kind: %d", int(k)))
	}
}

// ParseResourceKind parses "driver" or "vehicle".
func ParseResourceKind(s string) (ResourceKind, error) {
	switch s {
	case "driver":
		return ResourceDriver, nil
	case "vehicle":
		return ResourceVehicle, nil
	default:
		return ResourceKindInvalid, fmt.Errorf("unknown resource kind %q", s)
	}
}

// Availability labels mirror the Available flag of drivers/vehicles.
const (
	AvailableLabel = "available"
	AssignedLabel  = "assigned"
)

// AvailabilityLabel returns the status label matching available.
func AvailabilityLabel(available bool) string {
	if available {
		return AvailableLabel
	}
	return AssignedLabel
}

// Driver is an allocatable person. Available is cleared by allocation
// and set again when the shipment is delivered or cancelled.
type Driver struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	Phone         string    `json:"phone"`
	Available     bool      `json:"available"`
	Status        string    `json:"status"`
}

// Vehicle is an allocatable truck with a payload and volume capacity.
type Vehicle struct {
	ID          uuid.UUID       `json:"id"`
	PlateNumber string          `json:"plate_number"`
	Model       string          `json:"model"`
	PayloadKg   decimal.Decimal `json:"payload_kg"`
	VolumeM3    decimal.Decimal `json:"volume_m3"`
	Available   bool            `json:"available"`
	Status      string          `json:"status"`

	Maintenance []MaintenanceWindow `json:"maintenance,omitempty"`
}

// Fits reports whether l does not exceed the capacity of v.
func (v *Vehicle) Fits(l Load) bool {
	return l.WeightKg.LessThanOrEqual(v.PayloadKg) &&
		l.VolumeM3.LessThanOrEqual(v.VolumeM3)
}

// MaintenanceWindow is a scheduled downtime of a vehicle. A nil
// Window.End means that the end of maintenance is not known yet.
type MaintenanceWindow struct {
	ID        uuid.UUID  `json:"id"`
	VehicleID uuid.UUID  `json:"vehicle_id"`
	Window    OpenWindow `json:"window"`
	Note      string     `json:"note,omitempty"`
}
