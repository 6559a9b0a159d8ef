// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/freight/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allLtlStatuses = []model.LtlStatus{
	model.LtlConsolidating,
	model.LtlInTransit,
	model.LtlCompleted,
	model.LtlCancelled,
}

func TestLtlTransitionTable(t *testing.T) {
	legal := map[[2]model.LtlStatus]bool{
		{model.LtlConsolidating, model.LtlInTransit}: true,
		{model.LtlInTransit, model.LtlCompleted}:     true,
		{model.LtlConsolidating, model.LtlCancelled}: true,
		{model.LtlInTransit, model.LtlCancelled}:     true,
	}
	for _, from := range allLtlStatuses {
		for _, to := range allLtlStatuses {
			assert.Equal(
				t, legal[[2]model.LtlStatus{from, to}],
				from.CanTransitionTo(to),
				"%s -> %s", from, to,
			)
		}
	}
	// completed -> in_transit must be refused
	assert.False(t, model.LtlCompleted.CanTransitionTo(model.LtlInTransit))
	assert.True(t, model.LtlCompleted.IsTerminal())
	assert.True(t, model.LtlCancelled.IsTerminal())
	assert.False(t, model.LtlInTransit.IsTerminal())
}

func TestShipmentTransitionTable(t *testing.T) {
	a := assert.New(t)
	a.True(model.ShipmentPlanned.CanTransitionTo(model.ShipmentConsolidated))
	a.True(model.ShipmentPlanned.CanTransitionTo(model.ShipmentInTransit))
	a.True(model.ShipmentInTransit.CanTransitionTo(model.ShipmentDelivered))
	a.True(model.ShipmentDelivered.CanTransitionTo(model.ShipmentPODReceived))
	a.True(model.ShipmentDelivered.CanTransitionTo(model.ShipmentCancelled))
	a.False(model.ShipmentPlanned.CanTransitionTo(model.ShipmentDelivered))
	a.False(model.ShipmentPODReceived.CanTransitionTo(model.ShipmentCancelled))
	a.False(model.ShipmentCancelled.CanTransitionTo(model.ShipmentPlanned))
	a.False(model.ShipmentInTransit.CanTransitionTo(model.ShipmentPlanned))
	for _, s := range []model.ShipmentStatus{
		model.ShipmentPlanned, model.ShipmentConsolidated,
		model.ShipmentInTransit, model.ShipmentDelivered,
	} {
		a.True(s.CanTransitionTo(model.ShipmentCancelled), "%s", s)
		a.False(s.IsTerminal(), "%s", s)
	}
	a.True(model.ShipmentDelivered.ReleasesResources())
	a.True(model.ShipmentCancelled.ReleasesResources())
	a.False(model.ShipmentInTransit.ReleasesResources())
}

func TestRequestTransitionTable(t *testing.T) {
	a := assert.New(t)
	a.True(model.RequestNew.CanTransitionTo(model.RequestProcessing))
	a.True(model.RequestNew.CanTransitionTo(model.RequestCompleted))
	a.True(model.RequestProcessing.CanTransitionTo(model.RequestRejected))
	a.False(model.RequestProcessing.CanTransitionTo(model.RequestNew))
	a.False(model.RequestCompleted.CanTransitionTo(model.RequestRejected))
	a.False(model.RequestRejected.CanTransitionTo(model.RequestProcessing))
}

func TestStatusParsing(t *testing.T) {
	r := require.New(t)
	for _, s := range allLtlStatuses {
		p, err := model.ParseLtlStatus(s.String())
		r.NoError(err)
		r.Equal(s, p)
	}
	_, err := model.ParseShipmentStatus("lost")
	r.ErrorIs(err, model.ErrUnknownStatus)
	r.Error(model.ShipmentStatusInvalid.Validate())
	r.Panics(func() { _ = model.RequestStatusInvalid.String() })

	var body struct {
		Status model.ShipmentStatus `json:"status"`
	}
	r.NoError(json.Unmarshal([]byte(`{"status":"in_transit"}`), &body))
	r.Equal(model.ShipmentInTransit, body.Status)
	r.Error(json.Unmarshal([]byte(`{"status":"flying"}`), &body))
}
