// Package reminder is a small UMI application restoring the reference
// implementation's ready_reminder_server: a priority queue of timed
// events, ordered so the event whose ready time is soonest is always on
// top, and only extractable once its time has actually arrived.
package reminder

import (
	"container/heap"
	"time"
)

// Entry is one submitted event.
type Entry struct {
	Content string    `json:"content"`
	ReadyAt time.Time `json:"ready_at"`
}

// entryHeap orders Entry values earliest-ReadyAt-first, the Go
// container/heap equivalent of the reference implementation's inverted
// PartialOrd/Ord impl over std::collections::BinaryHeap (a max-heap
// flipped into a min-heap by time).
type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].ReadyAt.Before(h[j].ReadyAt) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// ReadyReminderServer holds submitted events and releases them only once
// their ready time has passed.
type ReadyReminderServer struct {
	entries entryHeap
}

// New returns an empty ReadyReminderServer. Registered under InvokeOp
// Init.
func New() *ReadyReminderServer {
	return &ReadyReminderServer{}
}

// SubmitEvent queues content to become extractable at readyAt, and
// returns the number of events currently queued.
func (s *ReadyReminderServer) SubmitEvent(content string, readyAt time.Time) int {
	heap.Push(&s.entries, Entry{Content: content, ReadyAt: readyAt})
	return s.entries.Len()
}

// ExtractEvent pops and returns the earliest-ready event if its ready
// time has passed, or nil if the queue is empty or the earliest event
// isn't ready yet.
func (s *ReadyReminderServer) ExtractEvent() *Entry {
	if s.entries.Len() == 0 {
		return nil
	}
	if s.entries[0].ReadyAt.After(time.Now()) {
		return nil
	}
	e := heap.Pop(&s.entries).(Entry)
	return &e
}
