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
	"bytes"
	"encoding/hex"
)

// Address is a 20-byte account identifier, the key type of the state store.
type Address [20]byte

// Hash is a 256-bit digest. It is used both for trie root hashes and as the
// key type of the transaction and claim stores.
type Hash [32]byte

// Serializable types can convert themselves into a canonical byte sequence.
type Serializable interface {
	ToBytes() []byte
	SetBytes([]byte) bool
	Size() int // size in bytes when serialized
}

// HexToAddress parses a hex string (with or without 0x prefix) into an
// Address. Inputs longer than 20 bytes are truncated, shorter ones are
// left-aligned.
func HexToAddress(s string) Address {
	var a Address
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return a
	}
	copy(a[:], data)
	return a
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Compare orders addresses lexicographically.
func (a *Address) Compare(b *Address) int {
	return bytes.Compare(a[:], b[:])
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Compare orders hashes lexicographically.
func (h *Hash) Compare(other *Hash) int {
	return bytes.Compare(h[:], other[:])
}

// IsEmpty returns true for the all-zero hash.
func (h Hash) IsEmpty() bool {
	return h == Hash{}
}
