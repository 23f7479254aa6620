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
	"github.com/Fantom-foundation/LedgerDB/common"
)

// ClaimStoreReadHandle is a point-in-time view of the claim set.
type ClaimStoreReadHandle = StoreReadHandle[common.Hash, Claim]

// ClaimStoreReadHandleFactory mints ClaimStoreReadHandles.
type ClaimStoreReadHandleFactory = StoreReadHandleFactory[common.Hash, Claim]

// ClaimStore holds leader-election claims keyed by their content hash.
type ClaimStore struct {
	store[common.Hash, Claim]
}

// NewClaimStore creates an empty claim store.
func NewClaimStore() *ClaimStore {
	serializer := common.HashSerializer{}
	return &ClaimStore{newStore[common.Hash, Claim](codec[common.Hash, Claim]{
		keyToBytes:     serializer.ToBytes,
		keyFromBytes:   serializer.FromBytes,
		valueToBytes:   Claim.ToBytes,
		valueFromBytes: ClaimFromBytes,
	})}
}

// Insert queues the claim under its content hash, failing with
// ErrAlreadyExists if it is already present in the current snapshot.
func (s *ClaimStore) Insert(claim Claim) error {
	return s.store.Insert(claim.Hash(), claim)
}

// Extend queues a batch of claims keyed by their content hashes.
func (s *ClaimStore) Extend(claims []Claim) {
	pairs := make([]Pair[common.Hash, Claim], len(claims))
	for i, claim := range claims {
		pairs[i] = Pair[common.Hash, Claim]{Key: claim.Hash(), Value: claim}
	}
	s.store.Extend(pairs)
}

// Slash marks the claim stored under the given hash ineligible, queueing
// the change as an overwrite.
func (s *ClaimStore) Slash(hash common.Hash) error {
	claim, err := s.Get(hash)
	if err != nil {
		return err
	}
	claim.Eligible = false
	return s.Update(hash, claim)
}
