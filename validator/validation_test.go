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

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"

	"github.com/Fantom-foundation/LedgerDB/common"
	"github.com/Fantom-foundation/LedgerDB/common/amount"
	"github.com/Fantom-foundation/LedgerDB/state"
)

func TestStateReader_IsImplementedByStoreReadHandles(t *testing.T) {
	var _ StateReader = state.StateStoreReadHandle{}
}

// newSignedTransfer builds a fully valid transfer signed with the key
// derived from the given seed. The sender address is derived from the key.
func newSignedTransfer(t *testing.T, seed byte, value uint64, nonce uint64) state.Transaction {
	t.Helper()
	key, err := crypto.HexToECDSA(fmt.Sprintf("%064x", seed))
	if err != nil {
		t.Fatalf("deriving key failed: %v", err)
	}
	pub := crypto.FromECDSAPub(&key.PublicKey)
	hash := common.Keccak256(pub[1:])
	var sender common.Address
	copy(sender[:], hash[12:])

	txn := state.Transaction{
		Sender:          sender,
		Receiver:        common.HexToAddress("0x99"),
		Amount:          amount.New(value),
		Nonce:           nonce,
		Timestamp:       1700000000,
		SenderPublicKey: pub,
	}
	digest := txn.Digest()
	signature, err := crypto.Sign(digest[:], key)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	txn.Signature = signature
	return txn
}

func TestTxnValidator_AcceptsValidTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 7)
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Nonce: 7, Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); err != nil {
		t.Errorf("valid transaction rejected: %v", err)
	}
}

func TestTxnValidator_RejectsUnknownSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	reader.EXPECT().Get(txn.Sender).Return(state.Account{}, common.ErrNotFound)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown sender not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsInsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(49)}, nil)

	err := NewTxnValidator(reader).Validate(txn)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("insufficient balance not rejected, got %v", err)
	}
}

func TestTxnValidator_AcceptsExactBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(50)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); err != nil {
		t.Errorf("transfer of the full balance rejected: %v", err)
	}
}

func TestTxnValidator_RejectsNonceMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 3)
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Nonce: 4, Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrNonceOutOfOrder) {
		t.Errorf("nonce mismatch not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsTamperedSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	txn.Signature[0] ^= 0x01
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("tampered signature not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsSignatureOverModifiedContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	txn.Amount = amount.New(51) // signed digest no longer matches
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("signature over stale content not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsForeignPublicKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	other := newSignedTransfer(t, 2, 50, 0)
	txn.SenderPublicKey = other.SenderPublicKey
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrInvalidPublicKey) {
		t.Errorf("foreign public key not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsMalformedPublicKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 0)
	txn.SenderPublicKey = []byte{0x04, 0x01, 0x02}
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrInvalidPublicKey) {
		t.Errorf("malformed public key not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsZeroAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 0, 0)
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount not rejected, got %v", err)
	}
}

func TestTxnValidator_RejectsMissingTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	key, err := crypto.HexToECDSA(fmt.Sprintf("%064x", 1))
	if err != nil {
		t.Fatalf("deriving key failed: %v", err)
	}
	txn := newSignedTransfer(t, 1, 50, 0)
	txn.Timestamp = 0
	digest := txn.Digest()
	txn.Signature, err = crypto.Sign(digest[:], key)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Balance: amount.New(100)}, nil)

	if err := NewTxnValidator(reader).Validate(txn); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("missing timestamp not rejected, got %v", err)
	}
}

func TestTxnValidator_ReportsAllFailedChecks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reader := NewMockStateReader(ctrl)

	txn := newSignedTransfer(t, 1, 50, 3)
	txn.Signature[10] ^= 0xff
	reader.EXPECT().Get(txn.Sender).Return(state.Account{Nonce: 0, Balance: amount.New(10)}, nil)

	err := NewTxnValidator(reader).Validate(txn)
	for _, want := range []error{ErrInvalidSignature, ErrInsufficientBalance, ErrNonceOutOfOrder} {
		if !errors.Is(err, want) {
			t.Errorf("joined error misses %v, got %v", want, err)
		}
	}
}
