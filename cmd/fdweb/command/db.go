// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/spf13/cobra"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

const credsRenewalMessage = `The admin role password is read from the
.pgpass file in the pass-dir. New passwords are generated for the admin
and normal roles and kept in a .pgpass.new file until the database
changes are committed, then it replaces the .pgpass file.`

func init() {
	rootCmd.AddCommand(dbCmd)
}
