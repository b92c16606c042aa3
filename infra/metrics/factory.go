package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/wheelsched/core/factory"
	coremetrics "github.com/kilianp07/wheelsched/core/metrics"
)

// InfluxOptions is the conf block of an "influx" sink.
type InfluxOptions struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	// The listen port belongs to metrics.Config and StartPromServer, not
	// to the sink.
	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var o PromOptions
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		return NewPromSinkWithOptions(prometheus.DefaultRegisterer, o)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var o InfluxOptions
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		if o.URL == "" || o.Bucket == "" {
			return nil, errors.New("influx sink needs url and bucket")
		}
		return NewInfluxSinkWithFallback(o.URL, o.Token, o.Org, o.Bucket), nil
	})
}
