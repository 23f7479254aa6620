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
)

// Claim is an ownership artifact consumed by leader election. The core
// treats it as an opaque stored value keyed by its content hash; only the
// eligibility flag is interpreted here, so election layers can slash a
// claim without deleting it.
type Claim struct {
	Address   common.Address
	PublicKey []byte
	Nonce     uint64
	Eligible  bool
}

// claimEncoding is the canonical RLP shape of a Claim.
type claimEncoding struct {
	Address   common.Address
	PublicKey []byte
	Nonce     uint64
	Eligible  bool
}

// Hash returns the content hash identifying the claim. The eligibility flag
// is excluded, so slashing does not change the claim's identity.
func (c Claim) Hash() common.Hash {
	data, _ := rlp.EncodeToBytes([]interface{}{c.Address, c.PublicKey, c.Nonce})
	return common.Keccak256(data)
}

// ToBytes produces the canonical encoding of the claim.
func (c Claim) ToBytes() ([]byte, error) {
	data, err := rlp.EncodeToBytes(claimEncoding(c))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}
	return data, nil
}

// ClaimFromBytes decodes a claim from its canonical encoding.
func ClaimFromBytes(data []byte) (Claim, error) {
	var enc claimEncoding
	if err := rlp.DecodeBytes(data, &enc); err != nil {
		return Claim{}, fmt.Errorf("%w: %v", common.ErrInvalidData, err)
	}
	return Claim(enc), nil
}
