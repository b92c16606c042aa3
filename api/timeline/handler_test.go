package timeline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/wheelsched/core/model"
	"github.com/kilianp07/wheelsched/core/report"
)

type staticSource struct {
	tl     model.Timeline
	orders model.Orders
}

func (s staticSource) Timeline() model.Timeline { return s.tl }
func (s staticSource) Orders() model.Orders     { return s.orders }

func fixture() staticSource {
	base := time.Date(2025, 8, 25, 8, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }
	return staticSource{
		tl: model.NewTimeline([]model.Operation{
			{OrderID: "O021", Machine: "M1", Sequence: 1, Start: at(0), End: at(2), WheelType: "alloy"},
			{OrderID: "O021", Machine: "M2", Sequence: 2, Start: at(2), End: at(4), WheelType: "alloy"},
			{OrderID: "O014", Machine: "M1", Sequence: 1, Start: at(2), End: at(4), WheelType: "steel"},
			{OrderID: "O030", Machine: "M3", Sequence: 1, Start: at(1), End: at(2), WheelType: "steel"},
		}),
		orders: model.NewOrders([]model.Order{{ID: "O021", DueDate: at(3)}, {ID: "O014", DueDate: at(10)}}),
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestTimelineHandlerFilters(t *testing.T) {
	h := NewTimelineHandler(fixture())
	cases := []struct {
		target string
		want   int
	}{
		{"/api/timeline", 4},
		{"/api/timeline?machine=M1", 2},
		{"/api/timeline?wheel_type=steel", 2},
		{"/api/timeline?max_orders=2", 3},
		{"/api/timeline?machine=M1&wheel_type=steel", 1},
	}
	for _, c := range cases {
		rr := get(t, h, c.target)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", c.target, rr.Code)
		}
		var ops []model.Operation
		if err := json.NewDecoder(rr.Body).Decode(&ops); err != nil {
			t.Fatalf("%s: decode: %v", c.target, err)
		}
		if len(ops) != c.want {
			t.Errorf("%s: expected %d operations, got %d", c.target, c.want, len(ops))
		}
	}
	if rr := get(t, h, "/api/timeline?max_orders=x"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestReportHandler(t *testing.T) {
	rr := get(t, NewReportHandler(fixture()), "/api/report")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var r report.Report
	if err := json.NewDecoder(rr.Body).Decode(&r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.LateCount != 1 || len(r.Orders) != 2 || len(r.Machines) != 3 {
		t.Fatalf("unexpected report %+v", r)
	}
}
