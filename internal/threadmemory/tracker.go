// Package threadmemory tracks heap allocations on a per-OS-thread basis so
// that a thread's leftover allocations can be reclaimed once the thread has
// exited, without every allocation site paying for a mutex. Bookkeeping is
// a single lock-free Treiber stack: tracking an allocation is one
// CAS-prepend, and reaping detaches the whole stack in one swap, then
// walks it off to the side.
package threadmemory

import "sync/atomic"

// ReapMode selects which tracked allocations Reap collects.
type ReapMode int

const (
	// ReapUnused collects only allocations whose owning thread has
	// exited, leaving live threads' allocations tracked.
	ReapUnused ReapMode = iota
	// ReapAll collects every tracked allocation regardless of whether
	// its owning thread is still alive, for full teardown.
	ReapAll
)

type node struct {
	tid  int32
	data any
	next atomic.Pointer[node]
}

// Tracker is a lock-free registry of per-thread allocations. The zero
// value is ready to use.
type Tracker struct {
	head atomic.Pointer[node]
}

// Track registers data as owned by the calling OS thread.
func (t *Tracker) Track(data any) {
	n := &node{tid: gettid(), data: data}
	for {
		old := t.head.Load()
		n.next.Store(old)
		if t.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Reap detaches the tracked-allocation stack, partitions it by mode,
// reinserts the survivors, and returns the collected allocations.
func (t *Tracker) Reap(mode ReapMode) []any {
	detached := t.head.Swap(nil)

	var reaped []any
	var survivors *node
	for n := detached; n != nil; {
		next := n.next.Load()
		if mode == ReapAll || !threadAlive(n.tid) {
			reaped = append(reaped, n.data)
		} else {
			n.next.Store(survivors)
			survivors = n
		}
		n = next
	}

	if survivors == nil {
		return reaped
	}
	tail := survivors
	for tail.next.Load() != nil {
		tail = tail.next.Load()
	}
	for {
		old := t.head.Load()
		tail.next.Store(old)
		if t.head.CompareAndSwap(old, survivors) {
			break
		}
	}
	return reaped
}
