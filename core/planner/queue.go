package planner

import "container/heap"

type entry struct {
	subject   *SubjectWorkload
	remaining int
	score     float64
	seq       int
}

// dayQueue is a max-heap on score. Among equal scores the entry added first
// is popped first.
type dayQueue struct {
	items []entry
	seq   int
}

func newDayQueue(capacity int) *dayQueue {
	return &dayQueue{items: make([]entry, 0, capacity)}
}

func (q *dayQueue) Len() int { return len(q.items) }

func (q *dayQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.score != b.score {
		return a.score > b.score
	}
	return a.seq < b.seq
}

func (q *dayQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *dayQueue) Push(x any) { q.items = append(q.items, x.(entry)) }

func (q *dayQueue) Pop() any {
	n := len(q.items)
	e := q.items[n-1]
	q.items = q.items[:n-1]
	return e
}

func (q *dayQueue) add(w *SubjectWorkload, remaining int, score float64) {
	heap.Push(q, entry{subject: w, remaining: remaining, score: score, seq: q.seq})
	q.seq++
}

func (q *dayQueue) next() entry {
	return heap.Pop(q).(entry)
}
