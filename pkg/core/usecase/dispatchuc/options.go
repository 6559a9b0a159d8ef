// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dispatchuc

import (
	"errors"
	"time"
)

// Option is a functional option for the dispatch use case.
type Option func(uc *UseCase) error

// WithCapacityCheck enables or disables the verification that the
// cargo of a request fits the payload and volume capacity of the
// allocated vehicle. It is enabled by default.
func WithCapacityCheck(enabled bool) Option {
	return func(uc *UseCase) error {
		if uc.capacityCheck != nil {
			return errors.New("capacity check is already configured")
		}
		uc.capacityCheck = &enabled
		return nil
	}
}

// WithClock replaces the time source which is used for the actual
// pickup and delivery times and the timestamps of created records.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock function is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}
