// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// OutOfRangeError reports a setting, such as database.password-iters
// or relay.batch-size, which fell outside of its [Min, Max] bounds.
// A nil Min or Max stands for an open side.
type OutOfRangeError[T cmp.Ordered] struct {
	Value *T // the rejected value, nil for InvalidRange
	Min   *T
	Max   *T

	LessThanMin  bool
	InvalidRange bool // Min is greater than Max
}

// Error reports the rejected value along with the violated bound.
func (e *OutOfRangeError[T]) Error() string {
	switch {
	case e.InvalidRange:
		return fmt.Sprintf("min %v is greater than max %v", *e.Min, *e.Max)
	case e.LessThanMin:
		return fmt.Sprintf("%v is less than min %v", *e.Value, *e.Min)
	default:
		return fmt.Sprintf("%v is greater than max %v", *e.Value, *e.Max)
	}
}

// VerifyRange checks that *value is nil or lies within minb and maxb,
// where a nil bound is not checked. An out of range value is clamped
// to the violated bound, so a caller which only warns about the error
// still proceeds with a valid setting. The config package calls it
// after filling defaults, e.g., for consolidation.max-members and
// redis.idempotency-ttl.
func VerifyRange[T cmp.Ordered](
	value **T, minb, maxb *T,
) *OutOfRangeError[T] {
	switch {
	case minb != nil && maxb != nil && *minb > *maxb:
		return &OutOfRangeError[T]{Min: minb, Max: maxb, InvalidRange: true}
	case *value == nil:
		return nil
	}
	v := **value
	switch {
	case minb != nil && v < *minb:
		**value = *minb
		return &OutOfRangeError[T]{
			Value: &v, Min: minb, Max: maxb, LessThanMin: true,
		}
	case maxb != nil && v > *maxb:
		**value = *maxb
		return &OutOfRangeError[T]{Value: &v, Min: minb, Max: maxb}
	}
	return nil
}
