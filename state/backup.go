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

import (
	"errors"
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/Fantom-foundation/LedgerDB/backend/trie"
	"github.com/Fantom-foundation/LedgerDB/common"
)

// A store backup is a LevelDB database holding the canonical byte form of
// the store's entries at flush time. Restoration replays every pair as an
// Add followed by a refresh, so a restored store publishes one snapshot
// equal to the backed-up one.

// flushBackup writes the given entries into the backup at path, replacing
// any previous backup content for the same keys.
func flushBackup(path string, entries []trie.Entry) error {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", common.ErrBackupIO, path, err)
	}
	batch := new(leveldb.Batch)
	for _, entry := range entries {
		batch.Put(entry.Key, entry.Value)
	}
	writeErr := db.Write(batch, nil)
	if writeErr != nil {
		writeErr = fmt.Errorf("%w: writing %s: %v", common.ErrBackupIO, path, writeErr)
	}
	closeErr := db.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("%w: closing %s: %v", common.ErrBackupIO, path, closeErr)
	}
	return errors.Join(writeErr, closeErr)
}

// restoreBackup reads all entries of the backup at path. A missing backup
// is not an error; it yields no entries.
func restoreBackup(path string) ([]trie.Entry, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", common.ErrBackupIO, path, err)
	}
	defer db.Close()

	var entries []trie.Entry
	iter := db.NewIterator(nil, nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		entries = append(entries, trie.Entry{Key: key, Value: value})
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", common.ErrBackupIO, path, err)
	}
	return entries, nil
}
