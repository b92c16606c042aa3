package model

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// ErrUnknownOrder is returned when an order identifier is not part of the
// reference data.
var ErrUnknownOrder = errors.New("unknown order")

// OrderIDPattern matches order identifiers such as O021.
var OrderIDPattern = regexp.MustCompile(`^O\d{3}$`)

// ValidOrderID reports whether id has the O + 3 digits shape.
func ValidOrderID(id string) bool { return OrderIDPattern.MatchString(id) }

// Order is a customer job composed of one or more sequenced operations.
type Order struct {
	ID      string    `json:"order_id"`
	DueDate time.Time `json:"due_date"`
}

// Orders is an immutable lookup set of reference orders.
type Orders struct {
	byID map[string]Order
}

// NewOrders indexes the given orders by ID. Later duplicates win.
func NewOrders(list []Order) Orders {
	m := make(map[string]Order, len(list))
	for _, o := range list {
		m[o.ID] = o
	}
	return Orders{byID: m}
}

// Has reports whether id references an existing order.
func (o Orders) Has(id string) bool {
	if id == "" {
		return false
	}
	_, ok := o.byID[id]
	return ok
}

// Get returns the order with the given ID.
func (o Orders) Get(id string) (Order, error) {
	ord, ok := o.byID[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}
	return ord, nil
}

// Len returns the number of orders.
func (o Orders) Len() int { return len(o.byID) }

// IDs returns the sorted order identifiers.
func (o Orders) IDs() []string {
	ids := make([]string, 0, len(o.byID))
	for id := range o.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
