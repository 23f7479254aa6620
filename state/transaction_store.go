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

// TransactionStoreReadHandle is a point-in-time view of the transaction
// ledger.
type TransactionStoreReadHandle = StoreReadHandle[common.Hash, Transaction]

// TransactionStoreReadHandleFactory mints TransactionStoreReadHandles.
type TransactionStoreReadHandleFactory = StoreReadHandleFactory[common.Hash, Transaction]

// TransactionStore holds transaction records keyed by their digest.
type TransactionStore struct {
	store[common.Hash, Transaction]
}

// NewTransactionStore creates an empty transaction store.
func NewTransactionStore() *TransactionStore {
	serializer := common.HashSerializer{}
	return &TransactionStore{newStore[common.Hash, Transaction](codec[common.Hash, Transaction]{
		keyToBytes:     serializer.ToBytes,
		keyFromBytes:   serializer.FromBytes,
		valueToBytes:   Transaction.ToBytes,
		valueFromBytes: TransactionFromBytes,
	})}
}

// Insert queues the transaction under its digest, failing with
// ErrAlreadyExists if a record with the same digest is already present in
// the current snapshot.
func (s *TransactionStore) Insert(txn Transaction) error {
	return s.store.Insert(txn.Digest(), txn)
}

// Extend queues a batch of transactions keyed by their digests.
func (s *TransactionStore) Extend(txns []Transaction) {
	pairs := make([]Pair[common.Hash, Transaction], len(txns))
	for i, txn := range txns {
		pairs[i] = Pair[common.Hash, Transaction]{Key: txn.Digest(), Value: txn}
	}
	s.store.Extend(pairs)
}
