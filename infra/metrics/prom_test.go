package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/wheelsched/core/metrics"
)

func TestPromSink_RecordCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for _, o := range []coremetrics.Outcome{coremetrics.OutcomeApplied, coremetrics.OutcomeApplied, coremetrics.OutcomeRejected} {
		if err := sink.RecordCommand(coremetrics.CommandEvent{
			Intent: "delay_order", Source: "pattern", Outcome: o, Duration: 3 * time.Millisecond,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	expected := `
# HELP commands_total Total number of processed schedule commands
# TYPE commands_total counter
commands_total{intent="delay_order",outcome="applied",source="pattern"} 2
commands_total{intent="delay_order",outcome="rejected",source="pattern"} 1
`
	if err := testutil.CollectAndCompare(sink.commands, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.duration); c != 1 {
		t.Errorf("expected one duration series, got %d", c)
	}
}

func TestPromSink_FallbacksAndRepack(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordExtraction(coremetrics.ExtractionEvent{Fallback: false})
	_ = sink.RecordExtraction(coremetrics.ExtractionEvent{Fallback: true, Reason: "timeout"})
	_ = sink.RecordExtraction(coremetrics.ExtractionEvent{Fallback: true, Reason: "connection refused"})
	_ = sink.RecordRepack(coremetrics.RepackEvent{Shifted: 3})
	_ = sink.RecordRepack(coremetrics.RepackEvent{Shifted: 0})

	if v := testutil.ToFloat64(sink.fallbacks.WithLabelValues("timeout")); v != 1 {
		t.Errorf("timeout fallbacks = %v", v)
	}
	if v := testutil.ToFloat64(sink.fallbacks.WithLabelValues("error")); v != 1 {
		t.Errorf("error fallbacks = %v", v)
	}
	if v := testutil.ToFloat64(sink.shifted); v != 3 {
		t.Errorf("shifted = %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = a.RecordRepack(coremetrics.RepackEvent{Shifted: 1})
	_ = b.RecordRepack(coremetrics.RepackEvent{Shifted: 1})
	if v := testutil.ToFloat64(a.shifted); v != 2 {
		t.Errorf("expected shared counter, got %v", v)
	}
}

func TestServeRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordCommand(coremetrics.CommandEvent{Intent: "swap_orders", Source: "model", Outcome: coremetrics.OutcomeApplied})

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- ServeRegistry(ctx, addr, reg) }()

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			data, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			body = string(data)
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !strings.Contains(body, `commands_total{intent="swap_orders",outcome="applied",source="model"} 1`) {
		t.Fatalf("metrics not exposed: %s", body)
	}
}

func TestPromSink_Options(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithOptions(reg, PromOptions{Namespace: "wheelsched", Buckets: []float64{0.01, 0.1}})
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordCommand(coremetrics.CommandEvent{Intent: "swap_orders", Source: "model", Outcome: coremetrics.OutcomeApplied})
	n, err := testutil.GatherAndCount(reg, "wheelsched_commands_total", "wheelsched_command_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 namespaced series, got %d", n)
	}
}
