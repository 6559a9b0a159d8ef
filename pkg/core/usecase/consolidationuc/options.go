// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package consolidationuc

import (
	"errors"
	"fmt"
)

// Option is a functional option for the consolidation use case.
type Option func(uc *UseCase) error

// WithMaxMembers limits the number of shipments of each voyage.
// The default limit is 50 shipments.
func WithMaxMembers(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("max members (%d) is not positive", n)
		}
		if uc.maxMembers != 0 {
			return errors.New("max members is already configured")
		}
		uc.maxMembers = n
		return nil
	}
}
