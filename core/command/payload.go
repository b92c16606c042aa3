package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Intent names the kind of edit requested.
type Intent string

const (
	IntentDelay   Intent = "delay_order"
	IntentMove    Intent = "move_order"
	IntentSwap    Intent = "swap_orders"
	IntentUnknown Intent = "unknown"
)

// Known reports whether the intent is one of the three actionable kinds.
func (i Intent) Known() bool {
	switch i {
	case IntentDelay, IntentMove, IntentSwap:
		return true
	}
	return false
}

// Quantity is a magnitude as it appears in a payload. It keeps the raw token
// so that non-numeric input can be rejected by the validator rather than the
// decoder.
type Quantity struct {
	raw string
	set bool
}

// Num returns a Quantity holding v.
func Num(v float64) Quantity {
	return Quantity{raw: strconv.FormatFloat(v, 'f', -1, 64), set: true}
}

// Raw returns a Quantity holding an unparsed token.
func Raw(s string) Quantity { return Quantity{raw: s, set: true} }

// IsSet reports whether the field was present with a non-null value.
func (q Quantity) IsSet() bool { return q.set }

// Empty reports whether the quantity is absent or an empty token.
func (q Quantity) Empty() bool { return !q.set || strings.TrimSpace(q.raw) == "" }

// Float parses the quantity.
func (q Quantity) Float() (float64, error) {
	if !q.set {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(q.raw), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", q.raw)
	}
	return v, nil
}

func (q Quantity) String() string { return q.raw }

// MarshalJSON writes numeric quantities as numbers and anything else as a string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.set {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(q.raw, 64); err == nil {
		return []byte(q.raw), nil
	}
	return json.Marshal(q.raw)
}

// UnmarshalJSON accepts numbers, strings and null.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = Raw(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*q = Raw(n.String())
	return nil
}

// Payload is the candidate edit exchanged between extraction and validation.
// Only Intent is required; the remaining fields are interpreted per intent.
type Payload struct {
	Intent   Intent   `json:"intent"`
	OrderID  string   `json:"order_id,omitempty"`
	OrderID2 string   `json:"order_id_2,omitempty"`
	Days     Quantity `json:"days,omitzero"`
	Hours    Quantity `json:"hours,omitzero"`
	Date     string   `json:"date,omitempty"`
	Time     string   `json:"time,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	Note     string   `json:"note,omitempty"`
	// Raw carries the original text for unknown intents.
	Raw string `json:"raw,omitempty"`

	// Target is attached by the validator once a move date resolves.
	Target time.Time `json:"target,omitzero"`
}

// ErrMalformed is wrapped by DecodeStrict failures.
var ErrMalformed = errors.New("malformed payload")

// schemaPayload mirrors the fields a model may return. Raw and Target are
// set locally and have no place in model output.
type schemaPayload struct {
	Intent   Intent   `json:"intent"`
	OrderID  string   `json:"order_id"`
	OrderID2 string   `json:"order_id_2"`
	Days     Quantity `json:"days"`
	Hours    Quantity `json:"hours"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Timezone string   `json:"timezone"`
	Note     string   `json:"note"`
}

// DecodeStrict parses a model response into a Payload, rejecting fields
// outside the schema.
func DecodeStrict(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var sp schemaPayload
	if err := dec.Decode(&sp); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if sp.Intent == "" {
		return Payload{}, fmt.Errorf("%w: intent is required", ErrMalformed)
	}
	return Payload{
		Intent:   sp.Intent,
		OrderID:  sp.OrderID,
		OrderID2: sp.OrderID2,
		Days:     sp.Days,
		Hours:    sp.Hours,
		Date:     sp.Date,
		Time:     sp.Time,
		Timezone: sp.Timezone,
		Note:     sp.Note,
	}, nil
}

// UnknownPayload builds the terminal payload for unrecognised text.
func UnknownPayload(text string) Payload {
	return Payload{Intent: IntentUnknown, Raw: text}
}
