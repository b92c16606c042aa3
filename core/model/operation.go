package model

import "time"

// Operation is one scheduled unit of work of an order on a machine.
type Operation struct {
	OrderID   string    `json:"order_id"`
	Machine   string    `json:"machine"`
	Name      string    `json:"operation"`
	Sequence  int       `json:"sequence"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	DueDate   time.Time `json:"due_date"`
	WheelType string    `json:"wheel_type"`
}

// Duration returns End - Start.
func (o Operation) Duration() time.Duration { return o.End.Sub(o.Start) }

// Shifted returns a copy of o moved by d.
func (o Operation) Shifted(d time.Duration) Operation {
	o.Start = o.Start.Add(d)
	o.End = o.End.Add(d)
	return o
}

// Overlaps reports whether the [Start, End) intervals of o and other intersect.
func (o Operation) Overlaps(other Operation) bool {
	return o.Start.Before(other.End) && other.Start.Before(o.End)
}
