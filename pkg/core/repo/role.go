// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a database role name. Each role has a set of privileges
// which restrict the statements that its connections may run.
type Role string

// These roles are expected by the fdweb. The AdminRole must exist
// beforehand with super user privileges. It is only used by the
// database initialization use case in order to create the schema and
// the NormalRole. All other use cases connect with the NormalRole.
const (
	AdminRole  Role = "admin"
	NormalRole Role = "fdweb"
)
