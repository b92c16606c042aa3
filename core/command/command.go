package command

import (
	"fmt"
	"math"
	"time"
)

// Command is a validated edit. The set of implementations is closed.
type Command interface {
	Intent() Intent
	// Orders returns the orders the command touches.
	Orders() []string
	isCommand()
}

// DelayOrder shifts every operation of an order by Days and Hours.
type DelayOrder struct {
	OrderID string
	Days    float64
	Hours   float64
}

// MoveOrder moves an order so that its earliest operation starts at Target.
type MoveOrder struct {
	OrderID string
	Target  time.Time
	// Date and Time are the components the target was resolved from.
	Date string
	Time string
}

// SwapOrders exchanges the start positions of two distinct orders.
type SwapOrders struct {
	OrderID  string
	OrderID2 string
}

// Unknown is the terminal, non-actionable result for unrecognised text.
type Unknown struct {
	Raw string
}

func (DelayOrder) Intent() Intent { return IntentDelay }
func (MoveOrder) Intent() Intent  { return IntentMove }
func (SwapOrders) Intent() Intent { return IntentSwap }
func (Unknown) Intent() Intent    { return IntentUnknown }

func (c DelayOrder) Orders() []string { return []string{c.OrderID} }
func (c MoveOrder) Orders() []string  { return []string{c.OrderID} }
func (c SwapOrders) Orders() []string { return []string{c.OrderID, c.OrderID2} }
func (Unknown) Orders() []string      { return nil }

func (DelayOrder) isCommand() {}
func (MoveOrder) isCommand()  {}
func (SwapOrders) isCommand() {}
func (Unknown) isCommand()    {}

// Delta returns Days*24h + Hours*1h rounded to the nanosecond.
func (c DelayOrder) Delta() time.Duration {
	return Span(c.Days, c.Hours)
}

// Span converts fractional days and hours into a duration.
func Span(days, hours float64) time.Duration {
	ns := days*float64(24*time.Hour) + hours*float64(time.Hour)
	return time.Duration(math.Round(ns))
}

// Describe renders the confirmation shown once a command is applied.
func Describe(c Command) string {
	switch v := c.(type) {
	case DelayOrder:
		return fmt.Sprintf("Delayed %s", v.OrderID)
	case MoveOrder:
		return fmt.Sprintf("Moved %s to %s", v.OrderID, v.Target.Format("2006-01-02 15:04:05-07:00"))
	case SwapOrders:
		return fmt.Sprintf("Swapped %s ↔ %s", v.OrderID, v.OrderID2)
	default:
		return "Unsupported intent"
	}
}
