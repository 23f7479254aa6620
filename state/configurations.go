// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import "path/filepath"

// Config names the backup locations of a Database. All fields are optional:
// an empty Directory together with empty per-store paths starts every store
// empty and disables flushing at shutdown. There is no process-wide default;
// the configuration is always passed explicitly at construction.
type Config struct {
	// Directory is the root backup path. When set, stores without an
	// explicit path back up into per-store subdirectories of it.
	Directory string

	// Per-store overrides of the backup location.
	StateBackupPath       string
	TransactionBackupPath string
	ClaimBackupPath       string
}

func (c Config) stateBackupPath() string {
	return c.resolve(c.StateBackupPath, "state")
}

func (c Config) transactionBackupPath() string {
	return c.resolve(c.TransactionBackupPath, "transactions")
}

func (c Config) claimBackupPath() string {
	return c.resolve(c.ClaimBackupPath, "claims")
}

func (c Config) resolve(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	if c.Directory != "" {
		return filepath.Join(c.Directory, name)
	}
	return ""
}
