package timeline

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kilianp07/wheelsched/core/model"
	"github.com/kilianp07/wheelsched/core/report"
)

// Source provides the live schedule.
type Source interface {
	Timeline() model.Timeline
	Orders() model.Orders
}

// NewTimelineHandler returns an HTTP handler exposing the current schedule
// via GET /api/timeline. Optional filters: machine, wheel_type, max_orders.
func NewTimelineHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		params := r.URL.Query()
		machine, wheel := params.Get("machine"), params.Get("wheel_type")
		tl := src.Timeline()
		if machine != "" || wheel != "" {
			tl = tl.Filter(func(op model.Operation) bool {
				return (machine == "" || op.Machine == machine) && (wheel == "" || op.WheelType == wheel)
			})
		}
		if s := params.Get("max_orders"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "max_orders must be a non-negative integer", http.StatusBadRequest)
				return
			}
			tl = tl.OrdersByEarliestStart(n)
		}
		writeJSON(w, tl.Operations())
	})
}

// NewReportHandler serves report.Build for the current schedule via
// GET /api/report.
func NewReportHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, report.Build(src.Timeline(), src.Orders()))
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
