// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the freight dispatching entities: transport requests and
// their cargo, drivers and vehicles which may be allocated, shipments
// which bind a request to a driver and a vehicle for a time window,
// consolidated (LTL) voyages grouping shipments, and pricing tariffs.
// This layer may not depend on outer layers, while all other layers
// may depend on it.
//
// Each entity with a lifecycle has its own closed status enum and
// a transition table which is checked by an exhaustive switch, so an
// unknown status may not reach the use cases layer.
//
// Quantities and money are kept as decimal.Decimal values, so sums and
// prices are exact and reproducible regardless of the summation order.
package model
