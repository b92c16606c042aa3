// Package validate turns candidate payloads into typed commands. It is the
// only gate in front of the schedule mutators: anything it accepts can be
// applied without further checks.
package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kilianp07/wheelsched/core/command"
	"github.com/kilianp07/wheelsched/core/model"
)

// DefaultMoveTime is used when a move names a date but no time of day.
const DefaultMoveTime = "08:00"

// Rejection explains why a payload was refused.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Validator checks payloads against the loaded orders.
type Validator struct {
	loc         *time.Location
	defaultTime string
}

// New returns a validator resolving move targets in loc. An empty
// defaultTime falls back to DefaultMoveTime.
func New(loc *time.Location, defaultTime string) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	if strings.TrimSpace(defaultTime) == "" {
		defaultTime = DefaultMoveTime
	}
	return &Validator{loc: loc, defaultTime: defaultTime}
}

// Location is the zone move targets are expressed in.
func (v *Validator) Location() *time.Location { return v.loc }

// Validate returns the command described by p or a *Rejection. For moves the
// resolved instant is also stored in p.Target. Order existence is checked
// against orders; when no orders are loaded the timeline is consulted instead.
func (v *Validator) Validate(p *command.Payload, orders model.Orders, tl model.Timeline) (command.Command, error) {
	if p == nil {
		return nil, reject("Invalid payload")
	}
	if !p.Intent.Known() {
		return nil, reject("Unsupported intent")
	}
	exists := func(id string) bool {
		if !model.ValidOrderID(id) {
			return false
		}
		if orders.Len() == 0 {
			return tl.HasOrder(id)
		}
		return orders.Has(id)
	}
	if !exists(p.OrderID) {
		return nil, reject("Unknown order_id: %s", p.OrderID)
	}

	switch p.Intent {
	case command.IntentSwap:
		if !exists(p.OrderID2) {
			return nil, reject("Unknown order_id_2: %s", p.OrderID2)
		}
		if p.OrderID2 == p.OrderID {
			return nil, reject("Cannot swap the same order.")
		}
		return command.SwapOrders{OrderID: p.OrderID, OrderID2: p.OrderID2}, nil
	case command.IntentDelay:
		return v.delay(p)
	case command.IntentMove:
		return v.move(p)
	}
	return nil, reject("Invalid payload")
}

func (v *Validator) delay(p *command.Payload) (command.Command, error) {
	if absent(p.Days) && absent(p.Hours) {
		return nil, reject("Delay needs days or hours.")
	}
	days, err := p.Days.Float()
	if err != nil {
		return nil, reject("Days/Hours must be numeric.")
	}
	hours, err := p.Hours.Float()
	if err != nil || !finite(days) || !finite(hours) {
		return nil, reject("Days/Hours must be numeric.")
	}
	if ns := days*float64(24*time.Hour) + hours*float64(time.Hour); math.Abs(ns) >= maxDelay {
		return nil, reject("Delay is out of range.")
	}
	return command.DelayOrder{OrderID: p.OrderID, Days: days, Hours: hours}, nil
}

// maxDelay is the largest shift a time.Duration can carry, in nanoseconds.
const maxDelay = float64(math.MaxInt64)

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// absent treats missing, empty and zero quantities alike.
func absent(q command.Quantity) bool {
	if q.Empty() {
		return true
	}
	f, err := q.Float()
	return err == nil && f == 0
}

func (v *Validator) move(p *command.Payload) (command.Command, error) {
	date := strings.TrimSpace(p.Date)
	if date == "" {
		return nil, reject("Move needs a date.")
	}
	clock := strings.TrimSpace(p.Time)
	if clock == "" {
		clock = v.defaultTime
	}
	target, err := v.resolve(date, clock, p.Timezone)
	if err != nil {
		return nil, reject("Unparseable datetime: %s %s", date, clock)
	}
	p.Target = target
	return command.MoveOrder{OrderID: p.OrderID, Target: target, Date: date, Time: clock}, nil
}

// resolve parses date and clock together. Values without an offset are read
// in the payload timezone when one is given, otherwise in the configured zone;
// the result is always expressed in the configured zone.
func (v *Validator) resolve(date, clock, zone string) (time.Time, error) {
	in := v.loc
	if z := strings.TrimSpace(zone); z != "" {
		loc, err := time.LoadLocation(z)
		if err != nil {
			return time.Time{}, fmt.Errorf("timezone %q: %w", z, err)
		}
		in = loc
	}
	t, err := dateparse.ParseIn(date+" "+clock, in)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(v.loc), nil
}
