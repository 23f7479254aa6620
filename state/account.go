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

// Account is the value type of the state store. Values reachable from a
// published read handle are immutable; an update always produces a new
// Account replacing the old one atomically from the reader's view.
type Account struct {
	Nonce       uint64
	Balance     amount.Amount
	StorageRoot common.Hash
}

// accountEncoding is the canonical RLP shape of an Account.
type accountEncoding struct {
	Nonce       uint64
	Balance     [32]byte
	StorageRoot common.Hash
}

// ToBytes produces the canonical encoding of the account.
func (a Account) ToBytes() ([]byte, error) {
	data, err := rlp.EncodeToBytes(accountEncoding{
		Nonce:       a.Nonce,
		Balance:     a.Balance.Bytes32(),
		StorageRoot: a.StorageRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}
	return data, nil
}

// AccountFromBytes decodes an account from its canonical encoding.
func AccountFromBytes(data []byte) (Account, error) {
	var enc accountEncoding
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return Account{}, fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}
	return Account{
		Nonce:       enc.Nonce,
		Balance:     amount.NewFromBytes(enc.Balance[:]...),
		StorageRoot: enc.StorageRoot,
	}, nil
}

// UpdateArgs describes a per-field delta applied to a single account: a
// credit added to the balance, a debit subtracted from it, and an optional
// nonce bump.
type UpdateArgs struct {
	Address   common.Address
	Credit    amount.Amount
	Debit     amount.Amount
	BumpNonce bool
}

// Update applies the given delta to the account. It fails without modifying
// the account if the debit exceeds the credited balance or the credit
// overflows.
func (a *Account) Update(args UpdateArgs) error {
	balance, overflow := amount.AddOverflow(a.Balance, args.Credit)
	if overflow {
		return fmt.Errorf("%w: balance overflow for %v", common.ErrInvalidData, args.Address)
	}
	balance, underflow := amount.SubUnderflow(balance, args.Debit)
	if underflow {
		return fmt.Errorf("%w: debit exceeds balance of %v", common.ErrInvalidData, args.Address)
	}
	a.Balance = balance
	if args.BumpNonce {
		a.Nonce++
	}
	return nil
}
