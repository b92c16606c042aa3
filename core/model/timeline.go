package model

import (
	"sort"
	"time"
)

// Timeline is an immutable set of operations. Mutations build a new value;
// the zero Timeline is empty and ready to use.
type Timeline struct {
	ops []Operation
}

// NewTimeline copies ops into a new Timeline.
func NewTimeline(ops []Operation) Timeline {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return Timeline{ops: cp}
}

// Len returns the number of operations.
func (t Timeline) Len() int { return len(t.ops) }

// Operations returns a copy of the operations in storage order.
func (t Timeline) Operations() []Operation {
	cp := make([]Operation, len(t.ops))
	copy(cp, t.ops)
	return cp
}

// ForOrder returns the operations belonging to orderID sorted by sequence.
func (t Timeline) ForOrder(orderID string) []Operation {
	var res []Operation
	for _, op := range t.ops {
		if op.OrderID == orderID {
			res = append(res, op)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Sequence < res[j].Sequence })
	return res
}

// HasOrder reports whether at least one operation belongs to orderID.
func (t Timeline) HasOrder(orderID string) bool {
	for _, op := range t.ops {
		if op.OrderID == orderID {
			return true
		}
	}
	return false
}

// EarliestStart returns the minimum start among the operations of orderID.
func (t Timeline) EarliestStart(orderID string) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, op := range t.ops {
		if op.OrderID != orderID {
			continue
		}
		if !found || op.Start.Before(earliest) {
			earliest = op.Start
			found = true
		}
	}
	return earliest, found
}

// Completion returns the maximum end among the operations of orderID.
func (t Timeline) Completion(orderID string) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, op := range t.ops {
		if op.OrderID != orderID {
			continue
		}
		if !found || op.End.After(latest) {
			latest = op.End
			found = true
		}
	}
	return latest, found
}

// Machines returns the sorted set of machines hosting at least one operation
// of the given orders. With no orders it returns every machine.
func (t Timeline) Machines(orderIDs ...string) []string {
	want := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	seen := make(map[string]bool)
	var res []string
	for _, op := range t.ops {
		if len(want) > 0 && !want[op.OrderID] {
			continue
		}
		if !seen[op.Machine] {
			seen[op.Machine] = true
			res = append(res, op.Machine)
		}
	}
	sort.Strings(res)
	return res
}

// OrderIDs returns the orders present in the timeline sorted by earliest start.
func (t Timeline) OrderIDs() []string {
	first := make(map[string]time.Time)
	for _, op := range t.ops {
		if s, ok := first[op.OrderID]; !ok || op.Start.Before(s) {
			first[op.OrderID] = op.Start
		}
	}
	ids := make([]string, 0, len(first))
	for id := range first {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := first[ids[i]], first[ids[j]]
		if a.Equal(b) {
			return ids[i] < ids[j]
		}
		return a.Before(b)
	})
	return ids
}

// Filter returns a new Timeline holding only the operations accepted by keep.
func (t Timeline) Filter(keep func(Operation) bool) Timeline {
	var res []Operation
	for _, op := range t.ops {
		if keep(op) {
			res = append(res, op)
		}
	}
	return Timeline{ops: res}
}

// Conflict describes two operations overlapping on the same machine.
type Conflict struct {
	Machine string
	First   Operation
	Second  Operation
}

// Overlaps lists every pair of operations violating machine non-overlap.
func (t Timeline) Overlaps() []Conflict {
	byMachine := make(map[string][]Operation)
	for _, op := range t.ops {
		byMachine[op.Machine] = append(byMachine[op.Machine], op)
	}
	machines := make([]string, 0, len(byMachine))
	for m := range byMachine {
		machines = append(machines, m)
	}
	sort.Strings(machines)

	var res []Conflict
	for _, m := range machines {
		ops := byMachine[m]
		SortByStart(ops)
		for i := range ops {
			for j := i + 1; j < len(ops); j++ {
				if !ops[j].Start.Before(ops[i].End) {
					break
				}
				if ops[i].Overlaps(ops[j]) {
					res = append(res, Conflict{Machine: m, First: ops[i], Second: ops[j]})
				}
			}
		}
	}
	return res
}

// SortByStart sorts ops by (start, end) ascending.
func SortByStart(ops []Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		if !ops[i].Start.Equal(ops[j].Start) {
			return ops[i].Start.Before(ops[j].Start)
		}
		return ops[i].End.Before(ops[j].End)
	})
}

// OrdersByEarliestStart keeps only the first max orders by earliest start.
// A non-positive max returns t unchanged.
func (t Timeline) OrdersByEarliestStart(max int) Timeline {
	ids := t.OrderIDs()
	if max <= 0 || len(ids) <= max {
		return t
	}
	keep := make(map[string]bool, max)
	for _, id := range ids[:max] {
		keep[id] = true
	}
	return t.Filter(func(op Operation) bool { return keep[op.OrderID] })
}
