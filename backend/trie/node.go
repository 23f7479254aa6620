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

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/LedgerDB/common"
)

// Nodes form a content-addressed Merkle structure. Once committed, a node is
// never mutated again; updates copy the nodes along the affected path. This
// keeps every published snapshot valid while the owning copy moves on.
type node interface {
	// commit finalizes the hashes of this node and all dirty nodes below
	// it, returning the node's content hash.
	commit() common.Hash
}

const (
	leafTag   = byte(0)
	branchTag = byte(1)
)

// leafNode holds one key/value pair. The path carries the nibbles of the
// hashed key remaining below the node's position in the trie.
type leafNode struct {
	path      []byte
	key       []byte
	value     []byte
	hashValue common.Hash
	dirty     bool
}

// branchNode fans out by one nibble of the hashed key path.
type branchNode struct {
	children  [16]node
	hashValue common.Hash
	dirty     bool
}

func newLeaf(path, key, value []byte) *leafNode {
	return &leafNode{path: path, key: key, value: value, dirty: true}
}

func (n *leafNode) commit() common.Hash {
	if !n.dirty {
		return n.hashValue
	}
	encoded, _ := rlp.EncodeToBytes([]interface{}{n.path, n.key, n.value})
	n.hashValue = common.Keccak256(append([]byte{leafTag}, encoded...))
	n.dirty = false
	return n.hashValue
}

func (n *branchNode) commit() common.Hash {
	if !n.dirty {
		return n.hashValue
	}
	var hashes [16]common.Hash
	for i, child := range n.children {
		if child != nil {
			hashes[i] = child.commit()
		}
	}
	encoded, _ := rlp.EncodeToBytes(hashes)
	n.hashValue = common.Keccak256(append([]byte{branchTag}, encoded...))
	n.dirty = false
	return n.hashValue
}

// copyOnWrite produces a mutable twin of the branch sharing all children.
func (n *branchNode) copyOnWrite() *branchNode {
	res := &branchNode{children: n.children, dirty: true}
	return res
}

// insert places the given leaf at the position addressed by path[depth:],
// copying every node it descends through. It returns the new subtree root
// and whether the key was not present before.
func insert(n node, path []byte, depth int, leaf *leafNode) (node, bool) {
	if n == nil {
		leaf.path = path[depth:]
		return leaf, true
	}
	switch cur := n.(type) {
	case *leafNode:
		if bytes.Equal(cur.key, leaf.key) {
			leaf.path = path[depth:]
			return leaf, false
		}
		// Split: build a branch chain along the shared prefix of the
		// two hashed keys, then fan out at the first difference.
		return splitLeaves(cur, leaf, path, depth), true
	case *branchNode:
		res := cur.copyOnWrite()
		child, added := insert(cur.children[path[depth]], path, depth+1, leaf)
		res.children[path[depth]] = child
		return res, added
	}
	return n, false
}

// splitLeaves replaces a single leaf by the branch structure distinguishing
// it from a newly inserted one. Both hashed keys agree on path[:depth].
func splitLeaves(old *leafNode, fresh *leafNode, path []byte, depth int) node {
	oldPath := old.path
	newPath := path[depth:]

	shared := 0
	for shared < len(oldPath) && shared < len(newPath) && oldPath[shared] == newPath[shared] {
		shared++
	}

	bottom := &branchNode{dirty: true}
	bottom.children[oldPath[shared]] = &leafNode{
		path:  oldPath[shared+1:],
		key:   old.key,
		value: old.value,
		dirty: true,
	}
	fresh.path = newPath[shared+1:]
	bottom.children[newPath[shared]] = fresh

	// Wrap the fan-out branch into one single-child branch per shared
	// nibble, so the structure depends only on the stored key set.
	res := node(bottom)
	for i := shared - 1; i >= 0; i-- {
		wrapper := &branchNode{dirty: true}
		wrapper.children[oldPath[i]] = res
		res = wrapper
	}
	return res
}

// remove deletes the leaf holding the given key, if present, copying every
// node along the descent. It returns the new subtree root and whether a
// deletion took place.
func remove(n node, path []byte, depth int, key []byte) (node, bool) {
	switch cur := n.(type) {
	case *leafNode:
		if bytes.Equal(cur.key, key) {
			return nil, true
		}
		return n, false
	case *branchNode:
		child, removed := remove(cur.children[path[depth]], path, depth+1, key)
		if !removed {
			return n, false
		}
		res := cur.copyOnWrite()
		res.children[path[depth]] = child
		return collapse(res, depth), true
	}
	return nil, false
}

// collapse restores the canonical shape after a deletion: a branch left with
// a single leaf below it is replaced by that leaf. Branches with a branch
// child remain, since they still distinguish at least two keys.
func collapse(n *branchNode, depth int) node {
	var only node
	var nibble byte
	count := 0
	for i, child := range n.children {
		if child != nil {
			only = child
			nibble = byte(i)
			count++
		}
	}
	if count != 1 {
		return n
	}
	leaf, isLeaf := only.(*leafNode)
	if !isLeaf {
		return n
	}
	path := make([]byte, 0, len(leaf.path)+1)
	path = append(path, nibble)
	path = append(path, leaf.path...)
	return &leafNode{path: path, key: leaf.key, value: leaf.value, dirty: true}
}

// lookup descends to the leaf addressed by path[depth:], comparing the full
// key at the end to guard against hash collisions.
func lookup(n node, path []byte, depth int, key []byte) ([]byte, bool) {
	for n != nil {
		switch cur := n.(type) {
		case *leafNode:
			if bytes.Equal(cur.key, key) {
				return cur.value, true
			}
			return nil, false
		case *branchNode:
			n = cur.children[path[depth]]
			depth++
		}
	}
	return nil, false
}

// forEach visits all key/value pairs of the subtree in path order.
func forEach(n node, visit func(key, value []byte)) {
	switch cur := n.(type) {
	case *leafNode:
		visit(cur.key, cur.value)
	case *branchNode:
		for _, child := range cur.children {
			if child != nil {
				forEach(child, visit)
			}
		}
	}
}

// toNibbles expands a hashed key into its nibble path.
func toNibbles(hash common.Hash) []byte {
	res := make([]byte, 2*len(hash))
	for i, b := range hash {
		res[2*i] = b >> 4
		res[2*i+1] = b & 0xF
	}
	return res
}
