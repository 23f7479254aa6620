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
	"errors"
	"testing"

	"github.com/Fantom-foundation/LedgerDB/common"
)

func TestClaimStore_InsertKeysByContentHash(t *testing.T) {
	store := NewClaimStore()
	claim := testClaim()

	if err := store.Insert(claim); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Commit()

	got, err := store.Get(claim.Hash())
	if err != nil {
		t.Fatalf("lookup by hash failed: %v", err)
	}
	if got.Address != claim.Address || got.Nonce != claim.Nonce || !got.Eligible {
		t.Errorf("wrong claim read back, wanted %+v, got %+v", claim, got)
	}
}

func TestClaimStore_DuplicateInsertIsRejected(t *testing.T) {
	store := NewClaimStore()
	claim := testClaim()

	if err := store.Insert(claim); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Commit()

	if err := store.Insert(claim); !errors.Is(err, common.ErrAlreadyExists) {
		t.Errorf("duplicate claim not rejected, got %v", err)
	}
}

func TestClaimStore_SlashMarksClaimIneligible(t *testing.T) {
	store := NewClaimStore()
	claim := testClaim()

	if err := store.Insert(claim); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Commit()

	if err := store.Slash(claim.Hash()); err != nil {
		t.Fatalf("slash failed: %v", err)
	}
	store.Commit()

	// The claim stays addressable under its original hash since the
	// eligibility flag is excluded from the identity.
	got, err := store.Get(claim.Hash())
	if err != nil {
		t.Fatalf("slashed claim not found: %v", err)
	}
	if got.Eligible {
		t.Errorf("slashed claim still eligible")
	}
}

func TestClaimStore_SlashFailsForUnknownClaim(t *testing.T) {
	store := NewClaimStore()
	if err := store.Slash(common.Keccak256([]byte("unknown"))); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("slash of unknown claim not rejected, got %v", err)
	}
}

func TestClaimStore_RemoveDropsAbandonedClaim(t *testing.T) {
	store := NewClaimStore()
	claim := testClaim()

	if err := store.Insert(claim); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Commit()

	store.Remove(claim.Hash())
	store.Commit()

	if _, err := store.Get(claim.Hash()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("removed claim still present, err %v", err)
	}
}

func TestClaimStore_ExtendRecordsBatch(t *testing.T) {
	store := NewClaimStore()
	claims := make([]Claim, 4)
	for i := range claims {
		claims[i] = testClaim()
		claims[i].Nonce = uint64(i)
	}
	store.Extend(claims)
	store.Commit()

	if got := store.Len(); got != 4 {
		t.Fatalf("wrong number of claims, wanted 4, got %d", got)
	}
}
