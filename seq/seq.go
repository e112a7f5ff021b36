// Package seq provides the mutation tracking container handed to
// submissions that have to prove in-place work, such as counting the swaps of
// a bubble sort.
//
// A Slice behaves like an indexable sequence. Every Set that stores a value
// different from the current element increments the Counter shared with the
// grader, except writes to the final slot: tracking exists to observe
// pairwise exchanges, so the last index is never eligible.
package seq

import (
	"encoding/json"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/algoflow/judge/value"
	"github.com/google/go-cmp/cmp"
)

// Counter counts element rewrites observed during one invocation.
// It only ever grows.
type Counter struct {
	n atomic.Int64
}

// Inc records a single rewrite
func (c *Counter) Inc() {
	c.n.Add(1)
}

// Load returns the current count
func (c *Counter) Load() int {
	return int(c.n.Load())
}

// Slice wraps a sequence of elements and reports rewrites to a Counter
type Slice struct {
	elems   []any
	counter *Counter
}

// New wraps elems. The slice is used in place, callers pass a copy when the
// original must survive. A nil counter disables tracking.
func New(elems []any, counter *Counter) *Slice {
	return &Slice{elems: elems, counter: counter}
}

// Tracked reports whether writes to s are counted
func (s *Slice) Tracked() bool {
	return s != nil && s.counter != nil
}

// Len returns the number of elements
func (s *Slice) Len() int {
	return len(s.elems)
}

// Get returns the element at index i
func (s *Slice) Get(i int) any {
	return s.elems[i]
}

// Int returns the element at index i as an int, panics for other types
func (s *Slice) Int(i int) int {
	switch v := s.elems[i].(type) {
	case int:
		return v
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
		panic(fmt.Sprintf("seq: element %d is %v, not int", i, v))
	}
	panic(fmt.Sprintf("seq: element %d is %T, not int", i, s.elems[i]))
}

// String returns the element at index i as a string, panics for other types
func (s *Slice) String(i int) string {
	v, ok := s.elems[i].(string)
	if !ok {
		panic(fmt.Sprintf("seq: element %d is %T, not string", i, s.elems[i]))
	}
	return v
}

// Set stores v at index i
func (s *Slice) Set(i int, v any) {
	v = value.Normalize(v)
	old := s.elems[i]
	s.elems[i] = v
	if s.counter != nil && i < len(s.elems)-1 && !cmp.Equal(old, v) {
		s.counter.Inc()
	}
}

// Swap exchanges the elements at i and j through Set
func (s *Slice) Swap(i, j int) {
	a, b := s.elems[i], s.elems[j]
	s.Set(i, b)
	s.Set(j, a)
}

// Less reports whether element i orders before element j.
// Numbers compare numerically, strings lexically.
func (s *Slice) Less(i, j int) bool {
	return less(s.elems[i], s.elems[j])
}

// Values returns a copy of the current elements
func (s *Slice) Values() []any {
	out := make([]any, len(s.elems))
	copy(out, s.elems)
	return out
}

// MarshalJSON encodes the slice as a plain JSON array
func (s *Slice) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.elems)
}

func less(a, b any) bool {
	switch x := a.(type) {
	case int:
		switch y := b.(type) {
		case int:
			return x < y
		case float64:
			return float64(x) < y
		}
	case float64:
		switch y := b.(type) {
		case int:
			return x < float64(y)
		case float64:
			return x < y
		}
	case string:
		if y, ok := b.(string); ok {
			return x < y
		}
	}
	panic(fmt.Sprintf("seq: cannot compare %T with %T", a, b))
}
