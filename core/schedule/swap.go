package schedule

import "github.com/kilianp07/wheelsched/core/model"

// Swap moves a to b's earliest start and b to a's, using the starts read
// before either delay is applied. The two delays run sequentially against
// the progressively updated timeline.
func Swap(tl model.Timeline, a, b string) model.Timeline {
	a0, okA := tl.EarliestStart(a)
	b0, okB := tl.EarliestStart(b)
	if !okA || !okB {
		return tl
	}
	da, ha := SplitDelta(b0.Sub(a0))
	db, hb := SplitDelta(a0.Sub(b0))
	out := Delay(tl, a, da, ha)
	return Delay(out, b, db, hb)
}
