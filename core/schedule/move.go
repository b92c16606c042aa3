package schedule

import (
	"time"

	"github.com/kilianp07/wheelsched/core/model"
)

// Move shifts orderID so that its earliest operation starts at target. The
// offset is applied as whole days plus whole remaining hours; any sub-hour
// remainder is dropped. An order without operations is returned unchanged.
func Move(tl model.Timeline, orderID string, target time.Time) model.Timeline {
	t0, ok := tl.EarliestStart(orderID)
	if !ok {
		return tl
	}
	days, hours := SplitDelta(target.Sub(t0))
	return Delay(tl, orderID, days, hours)
}

// SplitDelta decomposes d into floored whole days and floored whole hours of
// the non-negative remainder, e.g. -90m becomes (-1 day, 22 hours).
func SplitDelta(d time.Duration) (days, hours float64) {
	const day = 24 * time.Hour
	q := d / day
	if d%day < 0 {
		q--
	}
	rem := d - q*day
	return float64(q), float64(rem / time.Hour)
}
