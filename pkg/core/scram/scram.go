// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the password hashing interface which is
// needed by the database initialization. Role passwords are hashed in
// the Go process using the Salted Challenge Response Authentication
// Mechanism (RFC 5802, RFC 7677) and only the hash is sent in the
// ALTER ROLE statements, so a statements log never contains them.
// The implementation lives in the adapter layer.
package scram

// Hasher computes SCRAM stored credentials for a fixed underlying hash
// function (e.g., SHA-256).
type Hasher interface {
	// Hash returns the password hash in the format which PostgreSQL
	// accepts for the PASSWORD clause of CREATE/ALTER ROLE:
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	//
	// The pass must be non-empty and iters must be at least 4096.
	// An empty salt asks for a random salt.
	Hash(pass, salt string, iters int) (string, error)
}
