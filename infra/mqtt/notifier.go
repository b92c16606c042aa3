// Package mqtt forwards timeline change notices to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/wheelsched/core/events"
	"github.com/kilianp07/wheelsched/core/monitoring"
	"github.com/kilianp07/wheelsched/infra/logger"
	"github.com/kilianp07/wheelsched/internal/eventbus"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier publishes events.TimelineChanged as JSON.
type Notifier struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
	sleep      func(time.Duration)
	monitor    monitoring.Monitor
}

// NewNotifier connects to the broker described by cfg.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_notifier")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Notifier{
		cli:        c,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
		sleep:      time.Sleep,
		monitor:    monitoring.NopMonitor{},
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.QoS, false)
	}
	return opts, nil
}

// Notify publishes ev, retrying with exponential backoff.
func (n *Notifier) Notify(ev events.TimelineChanged) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		token := n.cli.Publish(n.topic, n.qos, n.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.log.Debugw("published timeline change", map[string]any{
				"command_id": ev.CommandID, "topic": n.topic, "changes": len(ev.Changes),
			})
			return nil
		}
		n.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < n.maxRetries {
			n.sleep(n.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Run forwards every event published on bus until ctx is done. The returned
// channel is closed when forwarding stops.
func (n *Notifier) Run(ctx context.Context, bus *eventbus.Bus[events.TimelineChanged]) <-chan struct{} {
	return bus.Handle(ctx, func(ev events.TimelineChanged) {
		if err := n.Notify(ev); err != nil {
			n.log.Errorf("timeline change %s not delivered: %v", ev.CommandID, err)
			n.monitor.CaptureException(err, map[string]string{"stage": "notify", "command_id": ev.CommandID})
		}
	})
}

// SetMonitor reports undelivered changes to m.
func (n *Notifier) SetMonitor(m monitoring.Monitor) { n.monitor = monitoring.OrNop(m) }

// Close gracefully closes the MQTT connection.
func (n *Notifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
