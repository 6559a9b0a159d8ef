// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus indicates that a given string may not be parsed as
// a known status of the relevant entity. Callers know which string was
// passed and should wrap this error with that context.
var ErrUnknownStatus = errors.New("unknown status")

// StatusError indicates an invalid numeric status value. The Entity
// field names the enum (e.g., "shipment") and Value holds the raw
// number which matched none of the known constants.
type StatusError struct {
	Entity string
	Value  int
}

// Error implements the error interface.
func (e StatusError) Error() string {
	return fmt.Sprintf("invalid %s status: %d", e.Entity, e.Value)
}

// RequestStatus is the closed set of transport request statuses.
// Although this enum is numeric, it is (de)serialized as a string.
type RequestStatus int

// Valid values for the RequestStatus enum.
const (
	RequestStatusInvalid RequestStatus = iota // zero value is invalid

	RequestNew        // submitted by a client
	RequestProcessing // picked up by a dispatcher
	RequestCompleted  // converted into a shipment
	RequestRejected   // refused by a dispatcher
)

// Validate returns nil if r is a known request status.
func (r RequestStatus) Validate() error {
	switch r {
	case RequestNew, RequestProcessing, RequestCompleted, RequestRejected:
		return nil
	default:
		return StatusError{Entity: "request", Value: int(r)}
	}
}

// String converts r to its wire representation. Invalid values cause
// a panic, so Validate must be used for untrusted values.
func (r RequestStatus) String() string {
	switch r {
	case RequestNew:
		return "new"
	case RequestProcessing:
		return "processing"
	case RequestCompleted:
		return "completed"
	case RequestRejected:
		return "rejected"
	default:
		panic(StatusError{Entity: "request", Value: int(r)})
	}
}

// ParseRequestStatus parses s, returning RequestStatusInvalid and
// ErrUnknownStatus for unknown strings.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch s {
	case "new":
		return RequestNew, nil
	case "processing":
		return RequestProcessing, nil
	case "completed":
		return RequestCompleted, nil
	case "rejected":
		return RequestRejected, nil
	default:
		return RequestStatusInvalid, ErrUnknownStatus
	}
}

// IsTerminal reports whether no transition may leave r.
func (r RequestStatus) IsTerminal() bool {
	return r == RequestCompleted || r == RequestRejected
}

// CanTransitionTo reports whether r may advance to next.
//
//	new -> processing | completed | rejected
//	processing -> completed | rejected
func (r RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch r {
	case RequestNew:
		return next == RequestProcessing ||
			next == RequestCompleted ||
			next == RequestRejected
	case RequestProcessing:
		return next == RequestCompleted || next == RequestRejected
	case RequestCompleted, RequestRejected:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RequestStatus) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RequestStatus) UnmarshalText(b []byte) error {
	s, err := ParseRequestStatus(string(b))
	if err != nil {
		return fmt.Errorf("request status %q: %w", b, err)
	}
	*r = s
	return nil
}

// ShipmentStatus is the closed set of shipment statuses.
type ShipmentStatus int

// Valid values for the ShipmentStatus enum.
const (
	ShipmentStatusInvalid ShipmentStatus = iota // zero value is invalid

	ShipmentPlanned      // driver and vehicle are reserved
	ShipmentConsolidated // member of a consolidating LTL voyage
	ShipmentInTransit    // cargo was picked up
	ShipmentDelivered    // cargo was handed over
	ShipmentPODReceived  // proof of delivery was received
	ShipmentCancelled    // abandoned before completion
)

// Validate returns nil if s is a known shipment status.
func (s ShipmentStatus) Validate() error {
	switch s {
	case ShipmentPlanned, ShipmentConsolidated, ShipmentInTransit,
		ShipmentDelivered, ShipmentPODReceived, ShipmentCancelled:
		return nil
	default:
		return StatusError{Entity: "shipment", Value: int(s)}
	}
}

// String converts s to its wire representation. Invalid values cause
// a panic.
func (s ShipmentStatus) String() string {
	switch s {
	case ShipmentPlanned:
		return "planned"
	case ShipmentConsolidated:
		return "consolidated"
	case ShipmentInTransit:
		return "in_transit"
	case ShipmentDelivered:
		return "delivered"
	case ShipmentPODReceived:
		return "pod_received"
	case ShipmentCancelled:
		return "cancelled"
	default:
		panic(StatusError{Entity: "shipment", Value: int(s)})
	}
}

// ParseShipmentStatus parses str, returning ShipmentStatusInvalid and
// ErrUnknownStatus for unknown strings.
func ParseShipmentStatus(str string) (ShipmentStatus, error) {
	switch str {
	case "planned":
		return ShipmentPlanned, nil
	case "consolidated":
		return ShipmentConsolidated, nil
	case "in_transit":
		return ShipmentInTransit, nil
	case "delivered":
		return ShipmentDelivered, nil
	case "pod_received":
		return ShipmentPODReceived, nil
	case "cancelled":
		return ShipmentCancelled, nil
	default:
		return ShipmentStatusInvalid, ErrUnknownStatus
	}
}

// IsTerminal reports whether no transition may leave s.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentPODReceived || s == ShipmentCancelled
}

// ReleasesResources reports whether entering s frees the driver and
// vehicle of a shipment for new allocations.
func (s ShipmentStatus) ReleasesResources() bool {
	return s == ShipmentDelivered || s == ShipmentCancelled
}

// CanTransitionTo reports whether s may advance to next.
//
//	planned -> consolidated | in_transit | cancelled
//	consolidated -> planned | in_transit | cancelled
//	in_transit -> delivered | cancelled
//	delivered -> pod_received | cancelled
//
// The consolidated <-> planned moves are performed by consolidation
// membership changes and not by explicit status updates.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	switch s {
	case ShipmentPlanned:
		return next == ShipmentConsolidated ||
			next == ShipmentInTransit ||
			next == ShipmentCancelled
	case ShipmentConsolidated:
		return next == ShipmentPlanned ||
			next == ShipmentInTransit ||
			next == ShipmentCancelled
	case ShipmentInTransit:
		return next == ShipmentDelivered || next == ShipmentCancelled
	case ShipmentDelivered:
		return next == ShipmentPODReceived || next == ShipmentCancelled
	case ShipmentPODReceived, ShipmentCancelled:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ShipmentStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ShipmentStatus) UnmarshalText(b []byte) error {
	st, err := ParseShipmentStatus(string(b))
	if err != nil {
		return fmt.Errorf("shipment status %q: %w", b, err)
	}
	*s = st
	return nil
}

// LtlStatus is the closed set of consolidation voyage statuses.
type LtlStatus int

// Valid values for the LtlStatus enum.
const (
	LtlStatusInvalid LtlStatus = iota // zero value is invalid

	LtlConsolidating // members may still join or leave
	LtlInTransit     // voyage departed
	LtlCompleted     // voyage arrived
	LtlCancelled     // voyage abandoned
)

// Validate returns nil if l is a known voyage status.
func (l LtlStatus) Validate() error {
	switch l {
	case LtlConsolidating, LtlInTransit, LtlCompleted, LtlCancelled:
		return nil
	default:
		return StatusError{Entity: "ltl shipment", Value: int(l)}
	}
}

// String converts l to its wire representation. Invalid values cause
// a panic.
func (l LtlStatus) String() string {
	switch l {
	case LtlConsolidating:
		return "consolidating"
	case LtlInTransit:
		return "in_transit"
	case LtlCompleted:
		return "completed"
	case LtlCancelled:
		return "cancelled"
	default:
		panic(StatusError{Entity: "ltl shipment", Value: int(l)})
	}
}

// ParseLtlStatus parses s, returning LtlStatusInvalid and
// ErrUnknownStatus for unknown strings.
func ParseLtlStatus(s string) (LtlStatus, error) {
	switch s {
	case "consolidating":
		return LtlConsolidating, nil
	case "in_transit":
		return LtlInTransit, nil
	case "completed":
		return LtlCompleted, nil
	case "cancelled":
		return LtlCancelled, nil
	default:
		return LtlStatusInvalid, ErrUnknownStatus
	}
}

// IsTerminal reports whether no transition may leave l.
func (l LtlStatus) IsTerminal() bool {
	return l == LtlCompleted || l == LtlCancelled
}

// CanTransitionTo reports whether l may advance to next.
//
//	consolidating -> in_transit | cancelled
//	in_transit -> completed | cancelled
func (l LtlStatus) CanTransitionTo(next LtlStatus) bool {
	switch l {
	case LtlConsolidating:
		return next == LtlInTransit || next == LtlCancelled
	case LtlInTransit:
		return next == LtlCompleted || next == LtlCancelled
	case LtlCompleted, LtlCancelled:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l LtlStatus) MarshalText() ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *LtlStatus) UnmarshalText(b []byte) error {
	st, err := ParseLtlStatus(string(b))
	if err != nil {
		return fmt.Errorf("ltl status %q: %w", b, err)
	}
	*l = st
	return nil
}

// TransitionError reports a refused status change. From and To hold
// the string forms of the statuses, so one type serves all entities.
type TransitionError struct {
	Entity   string
	From, To string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf(
		"%s may not move from %s to %s", e.Entity, e.From, e.To,
	)
}
