// Package pipeline wires extraction, validation and mutation into a single
// synchronous step: one text in, one outcome out.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/kilianp07/wheelsched/core/cmdlog"
	"github.com/kilianp07/wheelsched/core/command"
	"github.com/kilianp07/wheelsched/core/extract"
	"github.com/kilianp07/wheelsched/core/logger"
	"github.com/kilianp07/wheelsched/core/metrics"
	"github.com/kilianp07/wheelsched/core/model"
	"github.com/kilianp07/wheelsched/core/monitoring"
	"github.com/kilianp07/wheelsched/core/schedule"
	"github.com/kilianp07/wheelsched/core/validate"
	infralog "github.com/kilianp07/wheelsched/infra/logger"
)

// Outcome is the result of processing one command text. On rejection
// Timeline is the input timeline and Message holds the reason.
type Outcome struct {
	Timeline model.Timeline
	Applied  bool
	Message  string
	Command  command.Command
	Payload  command.Payload
	Source   extract.Source
	// Fallback is the model error that led to pattern extraction, if any.
	Fallback error
	Changes  []schedule.Change
	Entry    cmdlog.Entry
}

// Collateral returns the changes to orders the command did not name.
func (o Outcome) Collateral() []schedule.Change {
	if o.Command == nil {
		return nil
	}
	named := map[string]bool{}
	for _, id := range o.Command.Orders() {
		named[id] = true
	}
	var res []schedule.Change
	for _, c := range o.Changes {
		if !named[c.OrderID] {
			res = append(res, c)
		}
	}
	return res
}

// Engine processes command texts against timeline snapshots.
type Engine struct {
	extractor *extract.Extractor
	validator *validate.Validator
	orders    model.Orders
	log       logger.Logger
	sink      metrics.MetricsSink
	history   *cmdlog.Ring
	monitor   monitoring.Monitor
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = infralog.OrNop(l) } }

// WithMetrics sets the sink receiving command, extraction and repack events.
func WithMetrics(s metrics.MetricsSink) Option { return func(e *Engine) { e.sink = s } }

// WithHistory sets the ring recording every processed command.
func WithHistory(r *cmdlog.Ring) Option { return func(e *Engine) { e.history = r } }

// WithMonitor reports command log failures to m.
func WithMonitor(m monitoring.Monitor) Option {
	return func(e *Engine) { e.monitor = monitoring.OrNop(m) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New builds an engine. Without WithHistory a ring of the default capacity
// is used.
func New(ex *extract.Extractor, v *validate.Validator, orders model.Orders, opts ...Option) *Engine {
	e := &Engine{
		extractor: ex,
		validator: v,
		orders:    orders,
		log:       infralog.NopLogger{},
		sink:      metrics.NopSink{},
		monitor:   monitoring.NopMonitor{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.history == nil {
		e.history = cmdlog.NewRing(cmdlog.DefaultCapacity, nil)
	}
	return e
}

// History returns the ring of processed commands.
func (e *Engine) History() *cmdlog.Ring { return e.history }

// Orders returns the reference orders used for validation.
func (e *Engine) Orders() model.Orders { return e.orders }

// Process extracts, validates and applies text against tl. It never fails:
// rejected commands return tl unchanged with a reason.
func (e *Engine) Process(ctx context.Context, text string, tl model.Timeline) Outcome {
	start := e.now()
	res := e.extractor.Extract(ctx, text)
	e.recordExtraction(res, start)

	payload := res.Payload
	out := Outcome{Timeline: tl, Payload: payload, Source: res.Source, Fallback: res.Fallback}

	cmd, err := e.validator.Validate(&payload, e.orders, tl)
	out.Payload = payload
	if err != nil {
		out.Message = rejectionReason(err)
		e.log.Infow("command rejected", map[string]any{
			"text": text, "intent": string(payload.Intent), "reason": out.Message, "source": string(res.Source),
		})
	} else {
		out.Command = cmd
		out.Timeline = Apply(tl, cmd)
		out.Applied = true
		out.Message = command.Describe(cmd)
		out.Changes = schedule.Diff(tl, out.Timeline)
		e.log.Infow("command applied", map[string]any{
			"text": text, "intent": string(cmd.Intent()), "orders": cmd.Orders(),
			"changed": len(out.Changes), "source": string(res.Source),
		})
	}

	entry, herr := e.history.Add(ctx, cmdlog.Entry{
		Timestamp: start,
		Raw:       text,
		Payload:   payload,
		OK:        out.Applied,
		Message:   out.Message,
		Source:    string(res.Source),
	})
	if herr != nil {
		e.log.Warnf("command log store: %v", herr)
		e.monitor.CaptureException(herr, map[string]string{"stage": "command_log", "command_id": entry.ID})
	}
	out.Entry = entry

	e.recordCommand(out, start)
	if out.Applied {
		e.recordRepack(out)
	}
	return out
}

func rejectionReason(err error) string {
	var rej *validate.Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return err.Error()
}

func (e *Engine) recordExtraction(res extract.Result, at time.Time) {
	if res.Fallback != nil {
		e.log.Debugw("extraction fell back to patterns", map[string]any{
			"reason": extract.FallbackReason(res.Fallback), "error": res.Fallback.Error(),
		})
	}
	rec, ok := e.sink.(metrics.ExtractionRecorder)
	if !ok {
		return
	}
	if err := rec.RecordExtraction(metrics.ExtractionEvent{
		Source:   string(res.Source),
		Fallback: res.Fallback != nil,
		Reason:   extract.FallbackReason(res.Fallback),
		Latency:  res.Latency,
		Time:     at,
	}); err != nil {
		e.log.Warnf("record extraction: %v", err)
	}
}

func (e *Engine) recordCommand(out Outcome, at time.Time) {
	ev := metrics.CommandEvent{
		CommandID: out.Entry.ID,
		Intent:    string(out.Payload.Intent),
		Source:    string(out.Source),
		Outcome:   metrics.OutcomeApplied,
		Duration:  e.now().Sub(at),
		Time:      at,
	}
	if !out.Applied {
		ev.Outcome = metrics.OutcomeRejected
		ev.Reason = out.Message
	}
	if err := e.sink.RecordCommand(ev); err != nil {
		e.log.Warnf("record command: %v", err)
	}
}

func (e *Engine) recordRepack(out Outcome) {
	collateral := out.Collateral()
	machines := map[string]bool{}
	var maxOffset time.Duration
	for _, c := range collateral {
		machines[c.Machine] = true
		e.log.Debugw("repack shifted operation", map[string]any{
			"order_id": c.OrderID, "machine": c.Machine, "sequence": c.Sequence, "offset": c.Offset.String(),
		})
		if c.Offset > maxOffset {
			maxOffset = c.Offset
		}
	}
	rec, ok := e.sink.(metrics.RepackRecorder)
	if !ok {
		return
	}
	names := make([]string, 0, len(machines))
	for m := range machines {
		names = append(names, m)
	}
	sort.Strings(names)
	if err := rec.RecordRepack(metrics.RepackEvent{
		CommandID: out.Entry.ID,
		Intent:    string(out.Command.Intent()),
		Machines:  names,
		Shifted:   len(collateral),
		MaxOffset: maxOffset,
		Time:      out.Entry.Timestamp,
	}); err != nil {
		e.log.Warnf("record repack: %v", err)
	}
}
