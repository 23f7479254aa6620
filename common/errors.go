// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

const (
	// ErrNotFound is returned when a read or remove targets an absent key.
	// It is frequently a normal signal rather than a fault.
	ErrNotFound = ConstError("not found")

	// ErrAlreadyExists is returned when an insert targets an occupied key.
	// Committed state is left untouched; callers may retry as an update.
	ErrAlreadyExists = ConstError("already exists")

	// ErrInvalidData is returned when a value cannot be canonically encoded
	// or decoded. Operations failing this way are dropped during refresh.
	ErrInvalidData = ConstError("invalid data")

	// ErrBackupIO is returned when restoring or flushing a store backup
	// fails. It is surfaced at construction or shutdown and never retried.
	ErrBackupIO = ConstError("backup io failure")
)
