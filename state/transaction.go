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

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/LedgerDB/common"
	"github.com/Fantom-foundation/LedgerDB/common/amount"
)

// Transaction is a value transfer record. Confirmed transactions are keyed
// in the transaction store by their digest.
type Transaction struct {
	Sender          common.Address
	Receiver        common.Address
	Amount          amount.Amount
	Nonce           uint64
	Timestamp       uint64
	SenderPublicKey []byte
	Signature       []byte
}

// transactionEncoding is the canonical RLP shape of a Transaction.
type transactionEncoding struct {
	Sender          common.Address
	Receiver        common.Address
	Amount          [32]byte
	Nonce           uint64
	Timestamp       uint64
	SenderPublicKey []byte
	Signature       []byte
}

// signingPayload is the digest preimage; it excludes the signature.
type signingPayload struct {
	Sender    common.Address
	Receiver  common.Address
	Amount    [32]byte
	Nonce     uint64
	Timestamp uint64
}

// Digest returns the content hash identifying the transaction. It covers
// all fields except the signature, so signing does not change the identity.
func (t Transaction) Digest() common.Hash {
	data, _ := rlp.EncodeToBytes(signingPayload{
		Sender:    t.Sender,
		Receiver:  t.Receiver,
		Amount:    t.Amount.Bytes32(),
		Nonce:     t.Nonce,
		Timestamp: t.Timestamp,
	})
	return common.Keccak256(data)
}

// ToBytes produces the canonical encoding of the transaction.
func (t Transaction) ToBytes() ([]byte, error) {
	data, err := rlp.EncodeToBytes(transactionEncoding{
		Sender:          t.Sender,
		Receiver:        t.Receiver,
		Amount:          t.Amount.Bytes32(),
		Nonce:           t.Nonce,
		Timestamp:       t.Timestamp,
		SenderPublicKey: t.SenderPublicKey,
		Signature:       t.Signature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}
	return data, nil
}

// TransactionFromBytes decodes a transaction from its canonical encoding.
func TransactionFromBytes(data []byte) (Transaction, error) {
	var enc transactionEncoding
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}
	return Transaction{
		Sender:          enc.Sender,
		Receiver:        enc.Receiver,
		Amount:          amount.NewFromBytes(enc.Amount[:]...),
		Nonce:           enc.Nonce,
		Timestamp:       enc.Timestamp,
		SenderPublicKey: enc.SenderPublicKey,
		Signature:       enc.Signature,
	}, nil
}
