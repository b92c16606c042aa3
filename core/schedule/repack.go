package schedule

import (
	"sort"
	"time"

	"github.com/kilianp07/wheelsched/core/model"
)

// Push records one operation moved forward by the repack sweep.
type Push struct {
	Machine  string
	OrderID  string
	Sequence int
	From     time.Time
	To       time.Time
}

// Repack restores non-overlap on every machine hosting an operation of the
// touched orders. Operations are swept in (start, end) order; one that starts
// before the previous end is moved to that end with its duration preserved.
// Nothing moves backward and nothing is shortened.
func Repack(tl model.Timeline, touched ...string) model.Timeline {
	out, _ := RepackReport(tl, touched...)
	return out
}

// RepackReport is Repack that also lists the operations it pushed.
func RepackReport(tl model.Timeline, touched ...string) (model.Timeline, []Push) {
	machines := tl.Machines(touched...)
	if len(touched) == 0 || len(machines) == 0 {
		return tl, nil
	}
	ops := tl.Operations()
	var pushes []Push
	for _, m := range machines {
		idx := indicesOn(ops, m)
		sort.SliceStable(idx, func(i, j int) bool {
			a, b := ops[idx[i]], ops[idx[j]]
			if !a.Start.Equal(b.Start) {
				return a.Start.Before(b.Start)
			}
			return a.End.Before(b.End)
		})
		var lastEnd time.Time
		for n, i := range idx {
			op := ops[i]
			if n > 0 && op.Start.Before(lastEnd) {
				dur := op.Duration()
				pushes = append(pushes, Push{Machine: m, OrderID: op.OrderID, Sequence: op.Sequence, From: op.Start, To: lastEnd})
				op.Start = lastEnd
				op.End = lastEnd.Add(dur)
				ops[i] = op
			}
			lastEnd = op.End
		}
	}
	return model.NewTimeline(ops), pushes
}

func indicesOn(ops []model.Operation, machine string) []int {
	var idx []int
	for i, op := range ops {
		if op.Machine == machine {
			idx = append(idx, i)
		}
	}
	return idx
}
