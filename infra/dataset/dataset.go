// Package dataset reads the orders and schedule CSV files the engine works on.
//
// Both files carry a header row; columns are matched by name so their order
// does not matter. Timestamps without an offset are read in the configured
// zone.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kilianp07/wheelsched/core/model"
)

var (
	orderColumns    = []string{"order_id", "due_date"}
	scheduleColumns = []string{"order_id", "machine", "sequence", "start", "end"}
)

// Loader parses dataset files in a fixed location.
type Loader struct {
	loc *time.Location
}

// NewLoader returns a loader for timestamps in loc.
func NewLoader(loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{loc: loc}
}

// Load reads both files and returns the order set and the timeline.
func (l *Loader) Load(ordersPath, schedulePath string) (model.Orders, model.Timeline, error) {
	orders, err := readFile(ordersPath, l.ReadOrders)
	if err != nil {
		return model.Orders{}, model.Timeline{}, err
	}
	ops, err := readFile(schedulePath, l.ReadSchedule)
	if err != nil {
		return model.Orders{}, model.Timeline{}, err
	}
	return model.NewOrders(orders), model.NewTimeline(ops), nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ReadOrders parses an orders CSV (order_id,due_date).
func (l *Loader) ReadOrders(r io.Reader) ([]model.Order, error) {
	var out []model.Order
	err := l.scan(r, orderColumns, func(rec row) error {
		due, err := l.timestamp(rec, "due_date")
		if err != nil {
			return err
		}
		id, err := rec.required("order_id")
		if err != nil {
			return err
		}
		out = append(out, model.Order{ID: id, DueDate: due})
		return nil
	})
	return out, err
}

// ReadSchedule parses a schedule CSV.
func (l *Loader) ReadSchedule(r io.Reader) ([]model.Operation, error) {
	var out []model.Operation
	err := l.scan(r, scheduleColumns, func(rec row) error {
		id, err := rec.required("order_id")
		if err != nil {
			return err
		}
		machine, err := rec.required("machine")
		if err != nil {
			return err
		}
		seq, err := strconv.Atoi(rec.get("sequence"))
		if err != nil {
			return fmt.Errorf("sequence: %w", err)
		}
		start, err := l.timestamp(rec, "start")
		if err != nil {
			return err
		}
		end, err := l.timestamp(rec, "end")
		if err != nil {
			return err
		}
		if end.Before(start) {
			return fmt.Errorf("end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		var due time.Time
		if rec.get("due_date") != "" {
			if due, err = l.timestamp(rec, "due_date"); err != nil {
				return err
			}
		}
		out = append(out, model.Operation{
			OrderID:   id,
			Machine:   machine,
			Name:      rec.get("operation"),
			Sequence:  seq,
			Start:     start,
			End:       end,
			DueDate:   due,
			WheelType: rec.get("wheel_type"),
		})
		return nil
	})
	return out, err
}

type row struct {
	index  map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) required(col string) (string, error) {
	v := r.get(col)
	if v == "" {
		return "", fmt.Errorf("%s is empty", col)
	}
	return v, nil
}

func (l *Loader) timestamp(r row, col string) (time.Time, error) {
	v, err := r.required(col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := dateparse.ParseIn(v, l.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", col, err)
	}
	return t.In(l.loc), nil
}

// scan checks the header for the required columns and calls fn per record.
func (l *Loader) scan(r io.Reader, required []string, fn func(row) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("missing header")
	}
	if err != nil {
		return err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row{index: index, fields: fields}); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
