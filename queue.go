package digisim

import "container/heap"

// EventQueue is a time-ordered priority queue of Events. Events are
// ordered strictly by ascending Time; ties are broken in FIFO
// insertion order via a monotonically increasing sequence counter,
// since a plain binary heap has no other way to guarantee that an
// event scheduled at time T fires before a later-queued event also at
// time T.
type EventQueue struct {
	h    eventHeap
	next uint64
}

// Push schedules e, stamping it with the next insertion sequence
// number.
func (q *EventQueue) Push(e Event) {
	e.seq = q.next
	q.next++
	heap.Push(&q.h, e)
}

// Pop removes and returns the earliest pending event.
func (q *EventQueue) Pop() Event {
	return heap.Pop(&q.h).(Event)
}

// Top returns the earliest pending event without removing it.
func (q *EventQueue) Top() Event {
	return q.h[0]
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.h)
}

// Purge removes every pending NodeUpdateEvent targeting nodeIdx. For
// each event removed it invokes onRemove, which callers use to revert
// the producing gate's speculative output commit — the pairing of
// purge with revert is what makes inertial-delay cancellation correct:
// a glitch that would have flipped a gate's output, but is reversed by
// a later input change before the scheduled propagation fires, must
// both cancel the pending transition and restore the gate's prior
// committed output.
func (q *EventQueue) Purge(nodeIdx int, onRemove func()) int {
	kept := q.h[:0]
	removed := 0
	for _, e := range q.h {
		if e.Kind == NodeUpdateEvent && e.NodeIdx == nodeIdx {
			removed++
			if onRemove != nil {
				onRemove()
			}
			continue
		}
		kept = append(kept, e)
	}
	q.h = kept
	heap.Init(&q.h)
	return removed
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	e := x.(Event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
