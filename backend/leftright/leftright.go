// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package leftright

import (
	"log"
	"sync/atomic"
)

// Replica is one of the two copies of a structure managed by a WriteHandle.
// Both copies absorb the same operation log and must converge to the same
// content. Views produced by a replica must remain valid after the replica
// absorbs further operations; replicas therefore mutate via path-copying
// rather than in place.
type Replica[O any, V any] interface {
	// Absorb applies a single operation to this copy. A failed operation
	// must leave the copy unchanged.
	Absorb(op O) error

	// View produces an immutable point-in-time view of this copy.
	View() V
}

// WriteHandle is the single mutable handle of a left-right pair. It owns two
// replicas; reads are served from the published view of one copy while queued
// operations are absorbed into the other, which are then swapped.
//
// The handle is exclusively owned by one writer. Append and Refresh are not
// reentrant and must never run concurrently with each other, but both are
// safe alongside any number of readers minted through Factory.
type WriteHandle[R Replica[O, V], O any, V any] struct {
	read  R // the copy whose view is currently published
	write R // the offline copy absorbing the operation log
	log   []O
	view  *atomic.Pointer[V]
}

// New creates a left-right pair over the two given replicas. Both must be
// empty and of identical content; they diverge transiently between refreshes
// and reconverge through log replay. The initial published view is taken
// from the first replica.
func New[R Replica[O, V], O any, V any](left, right R) *WriteHandle[R, O, V] {
	handle := &WriteHandle[R, O, V]{
		read:  left,
		write: right,
		view:  &atomic.Pointer[V]{},
	}
	view := left.View()
	handle.view.Store(&view)
	return handle
}

// Append queues an operation against the writer-side copy. It has no effect
// on any outstanding read handle until the next Refresh.
func (h *WriteHandle[R, O, V]) Append(op O) {
	h.log = append(h.log, op)
}

// Pending returns the number of queued, not yet refreshed operations.
func (h *WriteHandle[R, O, V]) Pending() int {
	return len(h.log)
}

// Refresh applies every queued operation to the offline copy, publishes its
// view for new readers, swaps the roles of the two copies, replays the same
// log against the now-offline copy so both converge, and clears the log.
//
// An operation whose absorption fails is dropped with a logged warning; it
// never reaches the published view since it is applied to the offline copy
// before the swap. Refreshing with an empty log republishes the same content
// and is idempotent.
func (h *WriteHandle[R, O, V]) Refresh() {
	for _, op := range h.log {
		if err := h.write.Absorb(op); err != nil {
			log.Printf("leftright: dropping operation: %v", err)
		}
	}
	view := h.write.View()
	h.view.Store(&view)
	h.read, h.write = h.write, h.read

	// Replay on the former live copy. The same operations fail the same
	// way on identical content, so errors are not reported twice.
	for _, op := range h.log {
		_ = h.write.Absorb(op)
	}
	h.log = h.log[:0]
}

// Factory returns a read-handle factory bound to this pair. The factory and
// all handles minted from it may be used from any thread without
// coordination.
func (h *WriteHandle[R, O, V]) Factory() ReadHandleFactory[V] {
	return ReadHandleFactory[V]{view: h.view}
}

// ReadHandleFactory mints read handles referencing the latest published
// view. It is cheap to copy and safe to share between threads.
type ReadHandleFactory[V any] struct {
	view *atomic.Pointer[V]
}

// Handle returns a read handle pinned to the view published by the most
// recent Refresh. The handle is unaffected by later writes.
func (f ReadHandleFactory[V]) Handle() ReadHandle[V] {
	return ReadHandle[V]{view: *f.view.Load()}
}

// Clone returns an independent factory minting handles into the same pair.
func (f ReadHandleFactory[V]) Clone() ReadHandleFactory[V] {
	return ReadHandleFactory[V]{view: f.view}
}

// ReadHandle is an immutable, point-in-time view of the synchronized
// structure. Any number of handles may coexist.
type ReadHandle[V any] struct {
	view V
}

// View grants access to the pinned snapshot.
func (h ReadHandle[V]) View() V {
	return h.view
}
