package commands

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kilianp07/wheelsched/core/cmdlog"
)

// NewHistoryHandler returns an HTTP handler exposing recorded commands via
// GET /api/commands. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHistoryHandler(src cmdlog.Querier, token string, loc *time.Location) http.Handler {
	if loc == nil {
		loc = time.UTC
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := cmdlog.Query{
			OrderID:    params.Get("order_id"),
			Source:     params.Get("source"),
			FailedOnly: params.Get("failed") == "true",
		}
		if s := params.Get("start"); s != "" {
			if t, err := dateparse.ParseIn(s, loc); err == nil {
				q.Start = t
			}
		}
		if s := params.Get("end"); s != "" {
			if t, err := dateparse.ParseIn(s, loc); err == nil {
				q.End = t
			}
		}
		entries, err := src.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []cmdlog.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
