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

import (
	lru "github.com/hashicorp/golang-lru"
)

// CachedHasher memoizes Keccak256 digests of keys. Key hashing sits on the
// hot path of every trie access, while the set of live keys is small and
// highly repetitive, so an LRU in front of the hasher pays off.
//
// The hasher is safe for concurrent use.
type CachedHasher struct {
	cache *lru.Cache
}

// NewCachedHasher creates a hasher caching up to capacity digests.
// A non-positive capacity disables caching.
func NewCachedHasher(capacity int) *CachedHasher {
	if capacity <= 0 {
		return &CachedHasher{}
	}
	// the only failure mode of lru.New is a non-positive size
	cache, _ := lru.New(capacity)
	return &CachedHasher{cache: cache}
}

// Hash returns the Keccak256 digest of the given key.
func (h *CachedHasher) Hash(key []byte) Hash {
	if h.cache == nil {
		return Keccak256(key)
	}
	if hash, exists := h.cache.Get(string(key)); exists {
		return hash.(Hash)
	}
	hash := Keccak256(key)
	h.cache.Add(string(key), hash)
	return hash
}
