// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"

	"github.com/google/uuid"
)

// BlockerKind names the record type which makes a resource busy.
type BlockerKind string

// Known blocker kinds.
const (
	BlockedByShipment    BlockerKind = "shipment"
	BlockedByMaintenance BlockerKind = "maintenance"
	BlockedByFlag        BlockerKind = "availability-flag"
)

// ConflictError indicates that a driver or vehicle may not be reserved
// for Window because the BlockerID record (a shipment or maintenance
// window) already occupies an overlapping interval. For BlockedByFlag,
// BlockerID is the resource id itself.
type ConflictError struct {
	Resource   ResourceKind
	ResourceID uuid.UUID
	Blocker    BlockerKind
	BlockerID  uuid.UUID
	Window     Window
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Blocker == BlockedByFlag {
		return fmt.Sprintf(
			"%s %s is not available", e.Resource, e.ResourceID,
		)
	}
	return fmt.Sprintf(
		"%s %s is busy: %s %s overlaps [%s, %s]",
		e.Resource, e.ResourceID, e.Blocker, e.BlockerID,
		e.Window.Start.Format("2006-01-02T15:04:05Z07:00"),
		e.Window.End.Format("2006-01-02T15:04:05Z07:00"),
	)
}
