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

// StateStoreReadHandle is a point-in-time view of the account state.
type StateStoreReadHandle = StoreReadHandle[common.Address, Account]

// StateStoreReadHandleFactory mints StateStoreReadHandles.
type StateStoreReadHandleFactory = StoreReadHandleFactory[common.Address, Account]

// StateStore holds account balances and metadata keyed by address.
type StateStore struct {
	store[common.Address, Account]
}

// NewStateStore creates an empty account state store.
func NewStateStore() *StateStore {
	serializer := common.AddressSerializer{}
	return &StateStore{newStore[common.Address, Account](codec[common.Address, Account]{
		keyToBytes:     serializer.ToBytes,
		keyFromBytes:   serializer.FromBytes,
		valueToBytes:   Account.ToBytes,
		valueFromBytes: AccountFromBytes,
	})}
}

// UpdateAccount applies a per-field delta to the account stored under
// args.Address, queueing the result as an overwrite. The delta is computed
// against the current snapshot; it becomes visible at the next Commit.
func (s *StateStore) UpdateAccount(args UpdateArgs) error {
	account, err := s.Get(args.Address)
	if err != nil {
		return err
	}
	if err := account.Update(args); err != nil {
		return err
	}
	return s.Update(args.Address, account)
}
