package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/wheelsched/core/model"
)

// TimeLayout is the naive timestamp layout used in schedule CSV files.
const TimeLayout = "2006-01-02 15:04:05"

var scheduleHeader = []string{"order_id", "machine", "operation", "sequence", "start", "end", "due_date", "wheel_type"}

// WriteJSON writes the timeline operations to w as a JSON array.
func WriteJSON(w io.Writer, tl model.Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tl.Operations())
}

// WriteCSV writes the timeline in the schedule CSV layout so the result can
// be loaded again. Timestamps are written in loc without an offset.
func WriteCSV(w io.Writer, tl model.Timeline, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return err
	}
	for _, op := range tl.Operations() {
		due := ""
		if !op.DueDate.IsZero() {
			due = op.DueDate.In(loc).Format(TimeLayout)
		}
		rec := []string{
			op.OrderID,
			op.Machine,
			op.Name,
			strconv.Itoa(op.Sequence),
			op.Start.In(loc).Format(TimeLayout),
			op.End.In(loc).Format(TimeLayout),
			due,
			op.WheelType,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
