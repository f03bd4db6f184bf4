// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package interval provides an interval intersection index over integer
// endpoints, used to find every syntax node that covers a byte offset.
package interval

import (
	"fmt"
	"iter"
	"slices"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints" //nolint:exptostd // Tries to replace w/ cmp.
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Intersect maps each point to the values of all inserted intervals that
// contain it.
//
// Internally the covered points are partitioned into disjoint runs, each
// holding the values of every interval covering it, in insertion order.
//
// A zero value is ready to use.
type Intersect[K Endpoint, V any] struct {
	// Keyed by the (inclusive) end of each run.
	tree    btree.Map[K, *Entry[K, []V]]
	pending []*Entry[K, []V]
}

// Entry is one run of an [Intersect]: a maximal range of points covered by
// the same set of intervals.
type Entry[K Endpoint, V any] struct {
	Start, End K // Inclusive.
	Value      V
}

// Contains returns whether an entry contains a given point.
func (e Entry[K, V]) Contains(point K) bool {
	return e.Start <= point && point <= e.End
}

// Get returns the run containing point. Its Value is nil if no interval
// contains point.
func (m *Intersect[K, V]) Get(point K) Entry[K, []V] {
	it := m.tree.Iter()
	if !it.Seek(point) || point < it.Value().Start {
		return Entry[K, []V]{}
	}
	return *it.Value()
}

// Innermost returns the value of the most recently inserted interval that
// contains point and satisfies keep.
//
// When intervals are inserted outermost first, this is the innermost one.
func (m *Intersect[K, V]) Innermost(point K, keep func(V) bool) (V, bool) {
	values := m.Get(point).Value
	for i := len(values) - 1; i >= 0; i-- {
		if keep == nil || keep(values[i]) {
			return values[i], true
		}
	}
	var zero V
	return zero, false
}

// Entries returns an iterator over the runs of this index, in order.
func (m *Intersect[K, V]) Entries() iter.Seq[Entry[K, []V]] {
	return func(yield func(Entry[K, []V]) bool) {
		it := m.tree.Iter()
		for more := it.First(); more; more = it.Next() {
			if !yield(*it.Value()) {
				return
			}
		}
	}
}

// Insert adds the interval [start, end] with the given value.
//
// Returns true if the interval was disjoint from all others in the index.
func (m *Intersect[K, V]) Insert(start, end K, value V) (disjoint bool) {
	if start > end {
		panic(fmt.Sprintf("layoutkit/interval: start (%#v) > end (%#v)", start, end))
	}

	var prev *Entry[K, []V]
	for run := range m.overlapping(start, end) {
		if prev == nil && start < run.Start {
			// Uncovered points before the first overlapping run.
			m.queue(start, run.Start-1, []V{value})
		}

		// run.Value may share its backing array with a neighbor, so every
		// append below must go to a clipped copy.
		orig := slices.Clip(run.Value)

		if run.Contains(end) && end < run.End {
			// Split off the tail of the run that lies past end. The head
			// becomes a new run; the existing one keeps the tail.
			head := m.queue(run.Start, end, append(orig, value))
			run.Start = end + 1
			run = head
		}

		if run.Contains(start) && run.Start < start {
			// Split off the part of the run before start; it keeps the old
			// values.
			m.queue(run.Start, start-1, orig)
			run.Start = start
		}

		run.Value = append(orig, value)

		if prev != nil && prev.End+1 < run.Start {
			// Uncovered gap between two overlapping runs.
			m.queue(prev.End+1, run.Start-1, []V{value})
		}
		prev = run
	}

	if prev != nil && prev.End < end {
		// Uncovered points after the last overlapping run.
		m.queue(prev.End+1, end, []V{value})
	}

	for _, run := range m.pending {
		m.tree.Set(run.End, run)
	}
	m.pending = m.pending[:0]

	if prev == nil {
		m.tree.Set(end, &Entry[K, []V]{Start: start, End: end, Value: []V{value}})
	}
	return prev == nil
}

// queue schedules a new run for insertion once iteration is done.
func (m *Intersect[K, V]) queue(start, end K, values []V) *Entry[K, []V] {
	run := &Entry[K, []V]{Start: start, End: end, Value: values}
	m.pending = append(m.pending, run)
	return run
}

// overlapping returns an iterator over the runs that intersect [start, end].
func (m *Intersect[K, V]) overlapping(start, end K) iter.Seq[*Entry[K, []V]] {
	return func(yield func(*Entry[K, []V]) bool) {
		// Runs are keyed by their end, so seeking start finds the first run
		// that ends at or after it. From there, walk forward until a run
		// starts past end.
		it := m.tree.Iter()
		for more := it.Seek(start); more; more = it.Next() {
			if end < it.Value().Start || !yield(it.Value()) {
				return
			}
		}
	}
}
