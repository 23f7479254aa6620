// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package validator

//go:generate mockgen -source validation.go -destination validation_mocks.go -package validator

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Fantom-foundation/LedgerDB/common"
	"github.com/Fantom-foundation/LedgerDB/state"
)

const (
	// ErrAccountNotFound is produced when the sender of a transaction has
	// no account in the validated snapshot.
	ErrAccountNotFound = common.ConstError("sender account not found")
	// ErrInsufficientBalance is produced when the sender cannot cover the
	// transferred amount.
	ErrInsufficientBalance = common.ConstError("insufficient sender balance")
	// ErrNonceOutOfOrder is produced when the transaction nonce is not the
	// sender's next expected nonce.
	ErrNonceOutOfOrder = common.ConstError("transaction nonce out of order")
	// ErrInvalidSignature is produced when the signature does not verify
	// against the transaction digest and sender public key.
	ErrInvalidSignature = common.ConstError("invalid transaction signature")
	// ErrInvalidPublicKey is produced when the sender public key is
	// malformed or does not derive the sender address.
	ErrInvalidPublicKey = common.ConstError("invalid sender public key")
	// ErrInvalidTimestamp is produced when the transaction carries no
	// creation time.
	ErrInvalidTimestamp = common.ConstError("invalid transaction timestamp")
	// ErrInvalidAmount is produced when the transferred amount is zero.
	ErrInvalidAmount = common.ConstError("invalid transfer amount")
)

// StateReader provides the account lookups a validation run needs. The
// read handles of the account state store implement it; the interface
// exists so validation can also run against mocks or alternative state
// sources.
type StateReader interface {
	// Get returns the account stored under the given address, or
	// an error if no such account exists.
	Get(address common.Address) (state.Account, error)
}

// TxnValidator checks individual transactions against a pinned state view.
// A validator holds no mutable state and may be shared between goroutines
// as long as its reader may.
type TxnValidator struct {
	reader StateReader
}

// NewTxnValidator creates a validator checking against the given state.
func NewTxnValidator(reader StateReader) TxnValidator {
	return TxnValidator{reader: reader}
}

// Validate runs all checks on the transaction. The stateless checks run
// first; account-dependent checks run against the validator's reader. All
// failed checks are reported, joined into one error.
func (v TxnValidator) Validate(txn state.Transaction) error {
	errs := []error{
		v.checkAmount(txn),
		v.checkTimestamp(txn),
		v.checkPublicKey(txn),
		v.checkSignature(txn),
	}
	account, err := v.reader.Get(txn.Sender)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrAccountNotFound, txn.Sender))
	} else {
		errs = append(errs, v.checkBalance(txn, account), v.checkNonce(txn, account))
	}
	return errors.Join(errs...)
}

func (v TxnValidator) checkAmount(txn state.Transaction) error {
	if txn.Amount.IsZero() {
		return ErrInvalidAmount
	}
	return nil
}

func (v TxnValidator) checkTimestamp(txn state.Transaction) error {
	if txn.Timestamp == 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// checkPublicKey verifies the sender key parses as a secp256k1 point and
// that its keccak-derived address is the transaction's sender.
func (v TxnValidator) checkPublicKey(txn state.Transaction) error {
	uncompressed, err := uncompressedKey(txn.SenderPublicKey)
	if err != nil {
		return err
	}
	derived := common.Keccak256(uncompressed[1:])
	var address common.Address
	copy(address[:], derived[12:])
	if address != txn.Sender {
		return fmt.Errorf("%w: key derives %v, sender is %v", ErrInvalidPublicKey, address, txn.Sender)
	}
	return nil
}

func (v TxnValidator) checkSignature(txn state.Transaction) error {
	signature := txn.Signature
	// Recovery-id carrying signatures are accepted; verification uses
	// the plain r||s form.
	if len(signature) == crypto.SignatureLength {
		signature = signature[:crypto.SignatureLength-1]
	}
	if len(signature) != crypto.SignatureLength-1 {
		return fmt.Errorf("%w: unexpected length %d", ErrInvalidSignature, len(txn.Signature))
	}
	if _, err := uncompressedKey(txn.SenderPublicKey); err != nil {
		return err
	}
	digest := txn.Digest()
	if !crypto.VerifySignature(txn.SenderPublicKey, digest[:], signature) {
		return ErrInvalidSignature
	}
	return nil
}

func (v TxnValidator) checkBalance(txn state.Transaction, account state.Account) error {
	if account.Balance.Lt(txn.Amount) {
		return fmt.Errorf("%w: have %v, need %v", ErrInsufficientBalance, account.Balance, txn.Amount)
	}
	return nil
}

func (v TxnValidator) checkNonce(txn state.Transaction, account state.Account) error {
	if txn.Nonce != account.Nonce {
		return fmt.Errorf("%w: got %d, expected %d", ErrNonceOutOfOrder, txn.Nonce, account.Nonce)
	}
	return nil
}

// uncompressedKey normalizes a 33-byte compressed or 65-byte uncompressed
// secp256k1 public key into the uncompressed form.
func uncompressedKey(key []byte) ([]byte, error) {
	switch len(key) {
	case 33:
		pub, err := crypto.DecompressPubkey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return crypto.FromECDSAPub(pub), nil
	case 65:
		if _, err := crypto.UnmarshalPubkey(key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidPublicKey, len(key))
	}
}
