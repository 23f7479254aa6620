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
	"bytes"
	"errors"
	"testing"

	"github.com/Fantom-foundation/LedgerDB/common"
	"github.com/Fantom-foundation/LedgerDB/common/amount"
)

func testTransaction() Transaction {
	return Transaction{
		Sender:          common.HexToAddress("0x01"),
		Receiver:        common.HexToAddress("0x02"),
		Amount:          amount.New(100),
		Nonce:           3,
		Timestamp:       1700000000,
		SenderPublicKey: []byte{0x04, 0x11, 0x22},
		Signature:       []byte{0x33, 0x44},
	}
}

func TestTransaction_EncodingRoundTrip(t *testing.T) {
	want := testTransaction()
	data, err := want.ToBytes()
	if err != nil {
		t.Fatalf("encoding failed: %v", err)
	}
	got, err := TransactionFromBytes(data)
	if err != nil {
		t.Fatalf("decoding failed: %v", err)
	}
	if got.Sender != want.Sender || got.Receiver != want.Receiver ||
		got.Amount != want.Amount || got.Nonce != want.Nonce ||
		got.Timestamp != want.Timestamp ||
		!bytes.Equal(got.SenderPublicKey, want.SenderPublicKey) ||
		!bytes.Equal(got.Signature, want.Signature) {
		t.Errorf("round trip failed, wanted %+v, got %+v", want, got)
	}
}

func TestTransactionFromBytes_RejectsGarbage(t *testing.T) {
	if _, err := TransactionFromBytes([]byte{0x01, 0x02}); !errors.Is(err, common.ErrInvalidData) {
		t.Errorf("garbage input not rejected, got %v", err)
	}
}

func TestTransaction_DigestIgnoresSignature(t *testing.T) {
	signed := testTransaction()
	unsigned := signed
	unsigned.Signature = nil
	if signed.Digest() != unsigned.Digest() {
		t.Errorf("signing changed the transaction identity")
	}
}

func TestTransaction_DigestCoversContent(t *testing.T) {
	base := testTransaction()
	modified := base
	modified.Amount = amount.New(101)
	if base.Digest() == modified.Digest() {
		t.Errorf("amount change did not change the digest")
	}
	modified = base
	modified.Nonce++
	if base.Digest() == modified.Digest() {
		t.Errorf("nonce change did not change the digest")
	}
	modified = base
	modified.Receiver = common.HexToAddress("0x03")
	if base.Digest() == modified.Digest() {
		t.Errorf("receiver change did not change the digest")
	}
}
