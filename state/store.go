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
	"fmt"
	"log"

	"github.com/Fantom-foundation/LedgerDB/backend/leftright"
	"github.com/Fantom-foundation/LedgerDB/backend/trie"
	"github.com/Fantom-foundation/LedgerDB/common"
)

// Pair is one key/value element of a batch insert.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// codec translates between domain keys/values and their canonical byte
// representation shared by the trie and the backup format.
type codec[K comparable, V any] struct {
	keyToBytes     func(K) []byte
	keyFromBytes   func([]byte) K
	valueToBytes   func(V) ([]byte, error)
	valueFromBytes func([]byte) (V, error)
}

// store is a typed interface over one left-right pair of authenticated
// tries. All mutations are queued as operations and take effect at the next
// Commit; reads are served lock-free from the latest published snapshot.
//
// The writer path (Insert/Update/Remove/Extend/Commit) belongs to a single
// logical state-update thread and is not reentrant. Reads are safe from any
// number of threads at any time.
type store[K comparable, V any] struct {
	sync  *leftright.WriteHandle[*trie.Trie, trie.Operation, trie.Snapshot]
	codec codec[K, V]
}

func newStore[K comparable, V any](c codec[K, V]) store[K, V] {
	return store[K, V]{
		sync:  leftright.New[*trie.Trie, trie.Operation, trie.Snapshot](trie.New(), trie.New()),
		codec: c,
	}
}

func (s *store[K, V]) snapshot() trie.Snapshot {
	return s.sync.Factory().Handle().View()
}

// Insert queues an Add for the given pair. It fails with ErrAlreadyExists
// if the key is present in the current snapshot, leaving committed state
// untouched. Use Update for the explicit overwrite path.
func (s *store[K, V]) Insert(key K, value V) error {
	raw := s.codec.keyToBytes(key)
	if _, exists := s.snapshot().Get(raw); exists {
		return fmt.Errorf("%w: key %x", common.ErrAlreadyExists, raw)
	}
	data, err := s.codec.valueToBytes(value)
	if err != nil {
		return err
	}
	s.sync.Append(trie.AddOperation(raw, data))
	return nil
}

// Update queues an overwrite of the given key, regardless of whether it is
// present in the current snapshot.
func (s *store[K, V]) Update(key K, value V) error {
	data, err := s.codec.valueToBytes(value)
	if err != nil {
		return err
	}
	s.sync.Append(trie.UpdateOperation(s.codec.keyToBytes(key), data))
	return nil
}

// Remove queues a deletion of the given key. Absent keys are a no-op.
func (s *store[K, V]) Remove(key K) {
	s.sync.Append(trie.RemoveOperation(s.codec.keyToBytes(key)))
}

// Extend queues a batch insert. It never fails synchronously; pairs that
// cannot be encoded are dropped with a logged warning, and per-item trie
// failures surface during Commit the same way. Duplicate keys within one
// batch resolve to the last value.
func (s *store[K, V]) Extend(pairs []Pair[K, V]) {
	entries := make([]trie.Entry, 0, len(pairs))
	for _, pair := range pairs {
		data, err := s.codec.valueToBytes(pair.Value)
		if err != nil {
			log.Printf("state: dropping batch entry: %v", err)
			continue
		}
		entries = append(entries, trie.Entry{Key: s.codec.keyToBytes(pair.Key), Value: data})
	}
	s.sync.Append(trie.ExtendOperation(entries))
}

// Commit applies all queued operations and publishes a new snapshot. It is
// the explicit, caller-driven refresh point of the store; callers that
// never commit keep reading a stale but consistent view.
func (s *store[K, V]) Commit() {
	s.sync.Refresh()
}

// Pending returns the number of queued, uncommitted operations.
func (s *store[K, V]) Pending() int {
	return s.sync.Pending()
}

// Get returns the value stored under the given key in the latest published
// snapshot, or ErrNotFound.
func (s *store[K, V]) Get(key K) (V, error) {
	return s.Factory().Handle().Get(key)
}

// Entries returns every key/value pair of the latest published snapshot as
// an owned copy. It is safe concurrently with writes.
func (s *store[K, V]) Entries() map[K]V {
	return s.Factory().Handle().Entries()
}

// RootHash returns the root hash of the latest published snapshot.
func (s *store[K, V]) RootHash() common.Hash {
	return s.snapshot().RootHash()
}

// Len returns the number of entries in the latest published snapshot.
func (s *store[K, V]) Len() int {
	return s.snapshot().Len()
}

// Factory exposes a read-handle factory for zero-copy fan-out to other
// subsystems. Factories and handles are safe to share between threads.
func (s *store[K, V]) Factory() StoreReadHandleFactory[K, V] {
	return StoreReadHandleFactory[K, V]{inner: s.sync.Factory(), codec: s.codec}
}

// StoreReadHandleFactory mints read handles pinned to the latest published
// snapshot of one store.
type StoreReadHandleFactory[K comparable, V any] struct {
	inner leftright.ReadHandleFactory[trie.Snapshot]
	codec codec[K, V]
}

// Handle mints a read handle referencing the latest published snapshot.
func (f StoreReadHandleFactory[K, V]) Handle() StoreReadHandle[K, V] {
	return StoreReadHandle[K, V]{view: f.inner.Handle().View(), codec: f.codec}
}

// Clone returns an independent factory into the same store.
func (f StoreReadHandleFactory[K, V]) Clone() StoreReadHandleFactory[K, V] {
	return StoreReadHandleFactory[K, V]{inner: f.inner.Clone(), codec: f.codec}
}

// StoreReadHandle is an immutable, point-in-time view of one store.
type StoreReadHandle[K comparable, V any] struct {
	view  trie.Snapshot
	codec codec[K, V]
}

// Get returns the value stored under the given key, or ErrNotFound.
func (h StoreReadHandle[K, V]) Get(key K) (V, error) {
	var value V
	data, exists := h.view.Get(h.codec.keyToBytes(key))
	if !exists {
		return value, fmt.Errorf("%w: key %v", common.ErrNotFound, key)
	}
	return h.codec.valueFromBytes(data)
}

// Entries returns all pairs of the pinned snapshot as an owned copy.
func (h StoreReadHandle[K, V]) Entries() map[K]V {
	res := make(map[K]V, h.view.Len())
	h.view.ForEach(func(key, data []byte) {
		value, err := h.codec.valueFromBytes(data)
		if err != nil {
			log.Printf("state: skipping undecodable entry %x: %v", key, err)
			return
		}
		res[h.codec.keyFromBytes(key)] = value
	})
	return res
}

// RootHash returns the root hash authenticating the pinned snapshot.
func (h StoreReadHandle[K, V]) RootHash() common.Hash {
	return h.view.RootHash()
}

// Len returns the number of entries in the pinned snapshot.
func (h StoreReadHandle[K, V]) Len() int {
	return h.view.Len()
}

// rawEntries lists the snapshot's pairs in canonical byte form; used by the
// backup path.
func (h StoreReadHandle[K, V]) rawEntries() []trie.Entry {
	res := make([]trie.Entry, 0, h.view.Len())
	h.view.ForEach(func(key, value []byte) {
		k := make([]byte, len(key))
		copy(k, key)
		v := make([]byte, len(value))
		copy(v, value)
		res = append(res, trie.Entry{Key: k, Value: v})
	})
	return res
}

// restore replays backed-up pairs as Adds followed by a commit.
func (s *store[K, V]) restore(entries []trie.Entry) {
	if len(entries) == 0 {
		return
	}
	s.sync.Append(trie.ExtendOperation(entries))
	s.sync.Refresh()
}
