// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a state change which external collaborators (e.g.,
// notification dispatch or invoicing) may react to.
type EventType string

// Known event types.
const (
	EventRequestStatusChanged  EventType = "request.status_changed"
	EventShipmentAllocated     EventType = "shipment.allocated"
	EventShipmentStatusChanged EventType = "shipment.status_changed"
	EventResourcesReleased     EventType = "shipment.resources_released"
	EventLtlCreated            EventType = "ltl.created"
	EventLtlMembersChanged     EventType = "ltl.members_changed"
	EventLtlStatusChanged      EventType = "ltl.status_changed"
)

// Event is a status transition record. It is stored in the outbox in
// the same transaction as the change it describes and is published
// later, so consumers never observe a rolled back change.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       EventType         `json:"type"`
	EntityID   uuid.UUID         `json:"entity_id"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent creates an Event with a fresh id and the current time.
func NewEvent(t EventType, entityID uuid.UUID, from, to string) *Event {
	return &Event{
		ID:         uuid.New(),
		Type:       t,
		EntityID:   entityID,
		From:       from,
		To:         to,
		OccurredAt: time.Now().UTC(),
	}
}

// With records an extra attribute on e and returns e.
func (e *Event) With(key, value string) *Event {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[key] = value
	return e
}
