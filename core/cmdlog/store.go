package cmdlog

import (
	"context"
	"time"

	"github.com/kilianp07/wheelsched/core/command"
)

// Entry records one submitted command and what became of it.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Raw       string          `json:"raw"`
	Payload   command.Payload `json:"payload"`
	OK        bool            `json:"ok"`
	Message   string          `json:"message"`
	Source    string          `json:"source"`
}

// Orders returns the order IDs named by the payload.
func (e Entry) Orders() []string {
	var ids []string
	for _, id := range []string{e.Payload.OrderID, e.Payload.OrderID2} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Query defines filters for retrieving entries. Zero fields match everything.
type Query struct {
	Start      time.Time
	End        time.Time
	OrderID    string
	Source     string
	FailedOnly bool
}

// Match reports whether e satisfies q.
func (q Query) Match(e Entry) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	if q.Source != "" && e.Source != q.Source {
		return false
	}
	if q.FailedOnly && e.OK {
		return false
	}
	if q.OrderID != "" {
		for _, id := range e.Orders() {
			if id == q.OrderID {
				return true
			}
		}
		return false
	}
	return true
}

// Querier filters recorded entries. Both Store and Ring implement it.
type Querier interface {
	Query(ctx context.Context, q Query) ([]Entry, error)
}

// Store persists entries and supports querying.
type Store interface {
	Querier
	Append(ctx context.Context, e Entry) error
	Close() error
}
