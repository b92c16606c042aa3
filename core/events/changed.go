package events

import (
	"time"

	"github.com/kilianp07/wheelsched/core/schedule"
)

// TimelineChanged is published for every applied command.
type TimelineChanged struct {
	CommandID string            `json:"command_id"`
	Intent    string            `json:"intent"`
	Message   string            `json:"message"`
	OrderIDs  []string          `json:"order_ids"`
	Changes   []schedule.Change `json:"changes"`
	Time      time.Time         `json:"time"`
}

// Collateral returns the changes affecting orders the command did not name,
// that is the operations the repacker pushed out of the way.
func (e TimelineChanged) Collateral() []schedule.Change {
	named := make(map[string]bool, len(e.OrderIDs))
	for _, id := range e.OrderIDs {
		named[id] = true
	}
	var res []schedule.Change
	for _, c := range e.Changes {
		if !named[c.OrderID] {
			res = append(res, c)
		}
	}
	return res
}
