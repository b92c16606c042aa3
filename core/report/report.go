// Package report summarises a timeline: how late each order finishes against
// its due date and how busy each machine is over the planning horizon.
package report

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/wheelsched/core/model"
)

// OrderLateness is the completion of one order against its due date.
type OrderLateness struct {
	OrderID    string    `json:"order_id"`
	Completion time.Time `json:"completion"`
	DueDate    time.Time `json:"due_date"`
	// LatenessHours is negative when the order finishes early.
	LatenessHours float64 `json:"lateness_hours"`
}

// Late reports whether the order completes after its due date.
func (o OrderLateness) Late() bool { return o.LatenessHours > 0 }

// MachineLoad is the busy share of a machine over the horizon.
type MachineLoad struct {
	Machine     string  `json:"machine"`
	Operations  int     `json:"operations"`
	BusyHours   float64 `json:"busy_hours"`
	Utilisation float64 `json:"utilisation"`
}

// Report aggregates lateness and machine load for a timeline.
type Report struct {
	Orders         []OrderLateness `json:"orders"`
	LateCount      int             `json:"late_count"`
	MeanLateness   float64         `json:"mean_lateness_hours"`
	StdDevLateness float64         `json:"stddev_lateness_hours"`
	MaxLateness    float64         `json:"max_lateness_hours"`
	HorizonStart   time.Time       `json:"horizon_start"`
	HorizonEnd     time.Time       `json:"horizon_end"`
	Machines       []MachineLoad   `json:"machines"`
}

// Build computes the report. Due dates come from orders when known there and
// fall back to the operations' own due_date column. Orders without any due
// date are left out of the lateness figures.
func Build(tl model.Timeline, orders model.Orders) Report {
	var r Report
	var lateness []float64
	for _, id := range tl.OrderIDs() {
		due := dueDate(tl, orders, id)
		if due.IsZero() {
			continue
		}
		done, _ := tl.Completion(id)
		ol := OrderLateness{
			OrderID:       id,
			Completion:    done,
			DueDate:       due,
			LatenessHours: done.Sub(due).Hours(),
		}
		if ol.Late() {
			r.LateCount++
		}
		r.Orders = append(r.Orders, ol)
		lateness = append(lateness, ol.LatenessHours)
	}
	switch len(lateness) {
	case 0:
	case 1:
		r.MeanLateness = lateness[0]
		r.MaxLateness = lateness[0]
	default:
		r.MeanLateness, r.StdDevLateness = stat.MeanStdDev(lateness, nil)
		r.MaxLateness = floats.Max(lateness)
	}
	r.HorizonStart, r.HorizonEnd = horizon(tl)
	r.Machines = machineLoads(tl, r.HorizonEnd.Sub(r.HorizonStart).Hours())
	return r
}

func dueDate(tl model.Timeline, orders model.Orders, id string) time.Time {
	if o, err := orders.Get(id); err == nil && !o.DueDate.IsZero() {
		return o.DueDate
	}
	for _, op := range tl.ForOrder(id) {
		if !op.DueDate.IsZero() {
			return op.DueDate
		}
	}
	return time.Time{}
}

func horizon(tl model.Timeline) (time.Time, time.Time) {
	var start, end time.Time
	for i, op := range tl.Operations() {
		if i == 0 || op.Start.Before(start) {
			start = op.Start
		}
		if i == 0 || op.End.After(end) {
			end = op.End
		}
	}
	return start, end
}

func machineLoads(tl model.Timeline, horizonHours float64) []MachineLoad {
	busy := make(map[string][]float64)
	for _, op := range tl.Operations() {
		busy[op.Machine] = append(busy[op.Machine], op.Duration().Hours())
	}
	res := make([]MachineLoad, 0, len(busy))
	for m, hours := range busy {
		load := MachineLoad{Machine: m, Operations: len(hours), BusyHours: floats.Sum(hours)}
		if horizonHours > 0 {
			load.Utilisation = math.Min(1, load.BusyHours/horizonHours)
		}
		res = append(res, load)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Machine < res[j].Machine })
	return res
}
