// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package trie

import "fmt"

// OperationKind enumerates the atomic mutation units absorbed by a trie.
type OperationKind byte

const (
	// Add inserts a key/value pair, overwriting an existing entry.
	Add OperationKind = iota
	// Update overwrites the value of a key; like Add, it upserts. The
	// distinction exists for call sites that want to express intent.
	Update
	// Remove deletes a key; absent keys are a no-op.
	Remove
	// Extend inserts a list of pairs sequentially; for duplicate keys the
	// last value wins.
	Extend
)

func (k OperationKind) String() string {
	switch k {
	case Add:
		return "add"
	case Update:
		return "update"
	case Remove:
		return "remove"
	case Extend:
		return "extend"
	}
	return fmt.Sprintf("unknown(%d)", byte(k))
}

// Entry is one key/value pair of an Extend operation.
type Entry struct {
	Key   []byte
	Value []byte
}

// Operation is the atomic mutation unit queued against a left-right pair
// and later absorbed into both trie copies.
type Operation struct {
	Kind  OperationKind
	Key   []byte
	Value []byte
	Pairs []Entry // used by Extend only
}

// AddOperation creates an Add operation.
func AddOperation(key, value []byte) Operation {
	return Operation{Kind: Add, Key: key, Value: value}
}

// UpdateOperation creates an Update operation.
func UpdateOperation(key, value []byte) Operation {
	return Operation{Kind: Update, Key: key, Value: value}
}

// RemoveOperation creates a Remove operation.
func RemoveOperation(key []byte) Operation {
	return Operation{Kind: Remove, Key: key}
}

// ExtendOperation creates an Extend operation over the given pairs.
func ExtendOperation(pairs []Entry) Operation {
	return Operation{Kind: Extend, Pairs: pairs}
}
