// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx is a database transaction with at least READ-COMMITTED isolation.
// It must not be used concurrently. Row locks which are acquired by the
// XTxQueryer methods (e.g., Fleet.LockDriver) are held until the Tx
// is committed or rolled back.
type Tx interface {
	Queryer

	// IsTx prevents a Conn from implementing the Tx interface.
	IsTx()
}
