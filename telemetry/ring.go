package telemetry

import (
	"sync/atomic"

	"avrtimer/protocol"
)

// RingSize is the number of events buffered between the interrupt
// handler and the main loop. Must be a power of two.
const RingSize = 16

// Event is one dispatched interrupt captured in the handler.
type Event struct {
	Kind    protocol.EventKind
	Seq     uint32
	Counter uint16
}

// EventRing is a single-producer single-consumer queue. Record runs in
// interrupt context and never blocks: when the ring is full the event is
// counted as dropped. Pop runs in the main loop.
type EventRing struct {
	buf     [RingSize]Event
	head    atomic.Uint32 // next write, owned by Record
	tail    atomic.Uint32 // next read, owned by Pop
	seq     atomic.Uint32
	dropped atomic.Uint32
}

// Record captures an event. Every call consumes a sequence number, so
// dropped events show up as gaps downstream.
func (r *EventRing) Record(kind protocol.EventKind, counter uint16) {
	seq := r.seq.Add(1)
	head := r.head.Load()
	if head-r.tail.Load() >= RingSize {
		r.dropped.Add(1)
		return
	}
	r.buf[head%RingSize] = Event{Kind: kind, Seq: seq, Counter: counter}
	r.head.Store(head + 1)
}

// Pop returns the oldest buffered event.
func (r *EventRing) Pop() (Event, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return Event{}, false
	}
	ev := r.buf[tail%RingSize]
	r.tail.Store(tail + 1)
	return ev, true
}

// Len returns the number of buffered events.
func (r *EventRing) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// Dropped returns how many events were lost to a full ring.
func (r *EventRing) Dropped() uint32 {
	return r.dropped.Load()
}

// Recorded returns how many events were seen, buffered or dropped.
func (r *EventRing) Recorded() uint32 {
	return r.seq.Load()
}
