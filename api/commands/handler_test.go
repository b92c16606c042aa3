package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/wheelsched/core/cmdlog"
	"github.com/kilianp07/wheelsched/core/command"
)

func TestHistoryHandler_AuthAndFilters(t *testing.T) {
	ring := cmdlog.NewRing(10, nil)
	ctx := context.Background()
	base := time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
	if _, err := ring.Add(ctx, cmdlog.Entry{Timestamp: base, Raw: "delay O021 one day", OK: true, Source: "pattern",
		Payload: command.Payload{Intent: command.IntentDelay, OrderID: "O021"}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ring.Add(ctx, cmdlog.Entry{Timestamp: base.Add(time.Hour), Raw: "swap O014 with O999", Source: "model",
		Payload: command.Payload{Intent: command.IntentSwap, OrderID: "O014", OrderID2: "O999"}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	h := NewHistoryHandler(ring, "secret", time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/api/commands", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/commands?order_id=O021", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var got []cmdlog.Entry
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Raw != "delay O021 one day" {
		t.Fatalf("unexpected entries %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/commands?failed=true&start=2025-08-25T10:30:00Z", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	got = nil
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Source != "model" {
		t.Fatalf("unexpected failed entries %+v", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/commands", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}
