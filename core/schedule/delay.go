package schedule

import (
	"time"

	"github.com/kilianp07/wheelsched/core/command"
	"github.com/kilianp07/wheelsched/core/model"
)

// Shift moves every operation of orderID by d without repacking.
func Shift(tl model.Timeline, orderID string, d time.Duration) model.Timeline {
	ops := tl.Operations()
	for i, op := range ops {
		if op.OrderID == orderID {
			ops[i] = op.Shifted(d)
		}
	}
	return model.NewTimeline(ops)
}

// Delay shifts orderID by days and hours (either may be negative or
// fractional) and repacks the machines the order runs on.
func Delay(tl model.Timeline, orderID string, days, hours float64) model.Timeline {
	return DelayBy(tl, orderID, command.Span(days, hours))
}

// DelayBy is Delay with the offset already expressed as a duration.
func DelayBy(tl model.Timeline, orderID string, d time.Duration) model.Timeline {
	return Repack(Shift(tl, orderID, d), orderID)
}
