package pipeline

import (
	"github.com/kilianp07/wheelsched/core/command"
	"github.com/kilianp07/wheelsched/core/model"
	"github.com/kilianp07/wheelsched/core/schedule"
)

// Apply runs the mutator matching c. Unknown commands leave tl unchanged.
func Apply(tl model.Timeline, c command.Command) model.Timeline {
	switch v := c.(type) {
	case command.DelayOrder:
		return schedule.Delay(tl, v.OrderID, v.Days, v.Hours)
	case command.MoveOrder:
		return schedule.Move(tl, v.OrderID, v.Target)
	case command.SwapOrders:
		return schedule.Swap(tl, v.OrderID, v.OrderID2)
	default:
		return tl
	}
}
