// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package trie

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/LedgerDB/common"
)

// keyHashCacheSize bounds the per-trie cache of key digests.
const keyHashCacheSize = 1 << 16

// Trie is a deterministic, content-addressed key/value map. Keys are routed
// by the nibbles of their Keccak256 digest; every mutation path-copies the
// affected nodes, so views handed out by View remain stable forever.
//
// A Trie instance is not thread safe by itself; concurrency is provided by
// the left-right pair wrapping two of them. Snapshots are safe to share.
type Trie struct {
	root     node
	hasher   *common.CachedHasher
	size     int
	rootHash common.Hash
	pending  bool
}

// New creates an empty trie.
func New() *Trie {
	return &Trie{
		hasher:   common.NewCachedHasher(keyHashCacheSize),
		rootHash: common.EmptyKeccak256Hash,
	}
}

// Insert adds or overwrites the value stored under the given key. It fails
// with ErrInvalidData for empty keys or values, since those cannot be
// distinguished from absent entries in the canonical encoding.
func (t *Trie) Insert(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key", common.ErrInvalidData)
	}
	if len(value) == 0 {
		return fmt.Errorf("%w: empty value for key %x", common.ErrInvalidData, key)
	}
	path := toNibbles(t.hasher.Hash(key))
	root, added := insert(t.root, path, 0, newLeaf(nil, key, value))
	t.root = root
	if added {
		t.size++
	}
	t.pending = true
	return nil
}

// Remove deletes the entry stored under the given key. Removing an absent
// key is a no-op, not an error.
func (t *Trie) Remove(key []byte) {
	if len(key) == 0 || t.root == nil {
		return
	}
	path := toNibbles(t.hasher.Hash(key))
	root, removed := remove(t.root, path, 0, key)
	if !removed {
		return
	}
	t.root = root
	t.size--
	t.pending = true
}

// Get returns the value stored under the given key, if any. It never blocks.
func (t *Trie) Get(key []byte) ([]byte, bool) {
	if len(key) == 0 || t.root == nil {
		return nil, false
	}
	path := toNibbles(t.hasher.Hash(key))
	return lookup(t.root, path, 0, key)
}

// Commit finalizes all pending mutations and recomputes the root hash. It
// is idempotent when nothing is pending.
func (t *Trie) Commit() common.Hash {
	if !t.pending {
		return t.rootHash
	}
	if t.root == nil {
		t.rootHash = common.EmptyKeccak256Hash
	} else {
		t.rootHash = t.root.commit()
	}
	t.pending = false
	return t.rootHash
}

// RootHash returns the root hash as of the last Commit. Equal hashes imply,
// barring collisions, equal key/value sets.
func (t *Trie) RootHash() common.Hash {
	return t.rootHash
}

// Len returns the number of stored entries.
func (t *Trie) Len() int {
	return t.size
}

// Absorb applies a single operation, implementing the left-right replica
// contract. A failed operation leaves the trie unchanged; for Extend, the
// failing pairs are dropped while the remaining ones take effect.
func (t *Trie) Absorb(op Operation) error {
	switch op.Kind {
	case Add, Update:
		return t.Insert(op.Key, op.Value)
	case Remove:
		t.Remove(op.Key)
		return nil
	case Extend:
		var errs []error
		for _, pair := range op.Pairs {
			if err := t.Insert(pair.Key, pair.Value); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return fmt.Errorf("%w: unknown operation kind %v", common.ErrInvalidData, op.Kind)
}

// View commits pending mutations and produces an immutable point-in-time
// snapshot of the current content.
func (t *Trie) View() Snapshot {
	hash := t.Commit()
	return Snapshot{
		root:   t.root,
		hash:   hash,
		size:   t.size,
		hasher: t.hasher,
	}
}

// Snapshot is a frozen view of a trie. It is safe to share between threads
// and is never invalidated by later writes to the originating trie.
type Snapshot struct {
	root   node
	hash   common.Hash
	size   int
	hasher *common.CachedHasher
}

// Get returns the value stored under the given key at snapshot time. The
// returned slice must not be modified.
func (s Snapshot) Get(key []byte) ([]byte, bool) {
	if len(key) == 0 || s.root == nil {
		return nil, false
	}
	path := toNibbles(s.hasher.Hash(key))
	return lookup(s.root, path, 0, key)
}

// RootHash returns the root hash authenticating the snapshot's content.
func (s Snapshot) RootHash() common.Hash {
	return s.hash
}

// Len returns the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return s.size
}

// ForEach visits every key/value pair of the snapshot. Callers must not
// retain or modify the visited slices; use owned copies instead.
func (s Snapshot) ForEach(visit func(key, value []byte)) {
	if s.root == nil {
		return
	}
	forEach(s.root, visit)
}
