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
	"fmt"
	"sync"
	"testing"
)

// setReplica is a minimal replica used for testing: it accumulates string
// elements and views them as a frozen copy of the set.
type setReplica struct {
	elements map[string]bool
}

func newSetReplica() *setReplica {
	return &setReplica{elements: map[string]bool{}}
}

func (r *setReplica) Absorb(op string) error {
	if op == "" {
		return fmt.Errorf("empty element")
	}
	r.elements[op] = true
	return nil
}

func (r *setReplica) View() map[string]bool {
	view := make(map[string]bool, len(r.elements))
	for element := range r.elements {
		view[element] = true
	}
	return view
}

func TestWriteHandle_InitialViewIsEmpty(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	if got := len(handle.Factory().Handle().View()); got != 0 {
		t.Errorf("initial view not empty, got %d elements", got)
	}
}

func TestWriteHandle_AppendedOperationsAreInvisibleUntilRefresh(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	factory := handle.Factory()

	handle.Append("a")
	handle.Append("b")
	if got := handle.Pending(); got != 2 {
		t.Errorf("wrong number of pending operations, wanted 2, got %d", got)
	}
	if view := factory.Handle().View(); len(view) != 0 {
		t.Errorf("queued operations leaked into published view: %v", view)
	}

	handle.Refresh()
	if got := handle.Pending(); got != 0 {
		t.Errorf("log not cleared by refresh, %d operations left", got)
	}
	view := factory.Handle().View()
	if len(view) != 2 || !view["a"] || !view["b"] {
		t.Errorf("refresh did not publish queued operations, got %v", view)
	}
}

func TestWriteHandle_OutstandingHandlesKeepTheirView(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	factory := handle.Factory()

	handle.Append("a")
	handle.Refresh()
	old := factory.Handle()

	handle.Append("b")
	handle.Refresh()

	if view := old.View(); len(view) != 1 || !view["a"] {
		t.Errorf("pinned view changed after later refresh, got %v", view)
	}
	if view := factory.Handle().View(); len(view) != 2 {
		t.Errorf("new handle misses refreshed content, got %v", view)
	}
}

func TestWriteHandle_BothCopiesConvergeAcrossRefreshes(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	factory := handle.Factory()

	// Each refresh publishes the other copy; alternating refreshes would
	// lose operations if the log were not replayed on the swapped-out copy.
	for i := 0; i < 4; i++ {
		handle.Append(fmt.Sprintf("element-%d", i))
		handle.Refresh()
	}
	view := factory.Handle().View()
	if len(view) != 4 {
		t.Fatalf("copies diverged, wanted 4 elements, got %v", view)
	}
	for i := 0; i < 4; i++ {
		if !view[fmt.Sprintf("element-%d", i)] {
			t.Errorf("element-%d missing from view %v", i, view)
		}
	}
}

func TestWriteHandle_RefreshWithoutOperationsIsIdempotent(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	factory := handle.Factory()

	handle.Append("a")
	handle.Refresh()
	handle.Refresh()
	handle.Refresh()

	if view := factory.Handle().View(); len(view) != 1 || !view["a"] {
		t.Errorf("idle refresh changed published content, got %v", view)
	}
}

func TestWriteHandle_FailingOperationsAreDropped(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	factory := handle.Factory()

	handle.Append("a")
	handle.Append("") // rejected by the replica
	handle.Append("b")
	handle.Refresh()

	view := factory.Handle().View()
	if len(view) != 2 || !view["a"] || !view["b"] {
		t.Errorf("valid operations around a failing one were lost, got %v", view)
	}
}

func TestWriteHandle_ClonedFactoriesTrackTheSamePair(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	clone := handle.Factory().Clone()

	handle.Append("a")
	handle.Refresh()

	if view := clone.Handle().View(); len(view) != 1 || !view["a"] {
		t.Errorf("cloned factory does not observe refreshes, got %v", view)
	}
}

func TestWriteHandle_ReadersAreSafeDuringWrites(t *testing.T) {
	handle := New[*setReplica, string, map[string]bool](newSetReplica(), newSetReplica())
	factory := handle.Factory()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				view := factory.Handle().View()
				// A view must always be a complete copy: every element
				// published before the view was pinned must be present.
				for element := range view {
					if !view[element] {
						t.Errorf("incomplete view observed: %v", view)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		handle.Append(fmt.Sprintf("element-%d", i))
		if i%10 == 0 {
			handle.Refresh()
		}
	}
	handle.Refresh()
	close(done)
	wg.Wait()

	if got := len(factory.Handle().View()); got != 1000 {
		t.Errorf("wrong final element count, wanted 1000, got %d", got)
	}
}
