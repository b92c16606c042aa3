package schedule

import (
	"time"

	"github.com/kilianp07/wheelsched/core/model"
)

// Change describes an operation whose interval differs between two
// snapshots of the same timeline.
type Change struct {
	OrderID   string        `json:"order_id"`
	Machine   string        `json:"machine"`
	Sequence  int           `json:"sequence"`
	FromStart time.Time     `json:"from_start"`
	ToStart   time.Time     `json:"to_start"`
	Offset    time.Duration `json:"offset"`
}

// Diff compares before and after position by position. Mutations keep
// storage order, so the i-th operation of both snapshots is the same unit of
// work. Snapshots of different sizes yield no changes.
func Diff(before, after model.Timeline) []Change {
	a, b := before.Operations(), after.Operations()
	if len(a) != len(b) {
		return nil
	}
	var res []Change
	for i := range a {
		if a[i].Start.Equal(b[i].Start) && a[i].End.Equal(b[i].End) {
			continue
		}
		res = append(res, Change{
			OrderID:   a[i].OrderID,
			Machine:   a[i].Machine,
			Sequence:  a[i].Sequence,
			FromStart: a[i].Start,
			ToStart:   b[i].Start,
			Offset:    b[i].Start.Sub(a[i].Start),
		})
	}
	return res
}
