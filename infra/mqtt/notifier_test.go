package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/wheelsched/core/events"
	"github.com/kilianp07/wheelsched/core/monitoring"
	"github.com/kilianp07/wheelsched/core/schedule"
	"github.com/kilianp07/wheelsched/internal/eventbus"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	for path, data := range map[string][]byte{certFile: certPEM, keyFile: keyPEM, caFile: certPEM} {
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	if cfg.Enabled() {
		t.Fatal("empty config should be disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled config should validate: %v", err)
	}
	cfg = Config{Broker: "tcp://localhost:1883", QoS: 3}
	cfg.SetDefaults()
	if cfg.Topic != DefaultTopic || cfg.ClientID == "" || cfg.MaxRetries != 3 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected qos error")
	}
	cfg.QoS = 1
	cfg.UseTLS = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected tls error")
	}
}

func TestNewClientOptionsAuthAndWill(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", LWTTopic: "lwt", LWTPayload: "bye"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	if !opts.WillEnabled || opts.WillTopic != "lwt" || string(opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
}

func sampleEvent() events.TimelineChanged {
	ts := time.Date(2025, 8, 25, 8, 0, 0, 0, time.UTC)
	return events.TimelineChanged{
		CommandID: "c1",
		Intent:    "delay_order",
		Message:   "Delayed O021",
		OrderIDs:  []string{"O021"},
		Changes: []schedule.Change{{
			OrderID: "O021", Machine: "M1", Sequence: 1,
			FromStart: ts, ToStart: ts.Add(24 * time.Hour), Offset: 24 * time.Hour,
		}},
		Time: ts,
	}
}

func TestNotifyPublishesJSON(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	if err := n.Notify(sampleEvent()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	msgs := mc.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 publish got %d", len(msgs))
	}
	m := msgs[0]
	if m.topic != DefaultTopic || m.qos != 1 || !m.retained {
		t.Fatalf("unexpected publish options: %+v", m)
	}
	var got events.TimelineChanged
	if err := json.Unmarshal(m.payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.CommandID != "c1" || len(got.Changes) != 1 || got.Changes[0].Offset != 24*time.Hour {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestNotifyRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), fmt.Errorf("net fail"), nil}}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 10})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	var waits []time.Duration
	n.sleep = func(d time.Duration) { waits = append(waits, d) }
	if err := n.Notify(sampleEvent()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(mc.messages()) != 3 {
		t.Fatalf("expected 3 attempts")
	}
	if len(waits) != 2 || waits[0] != 10*time.Millisecond || waits[1] != 20*time.Millisecond {
		t.Fatalf("unexpected backoff: %v", waits)
	}
}

func TestNotifyGivesUp(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("a"), fmt.Errorf("b")}}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", MaxRetries: 1})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	n.sleep = func(time.Duration) {}
	if err := n.Notify(sampleEvent()); err == nil || err.Error() != "b" {
		t.Fatalf("expected last publish error, got %v", err)
	}
}

func TestRunForwardsBusEvents(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	bus := eventbus.New[events.TimelineChanged]()
	ctx, cancel := context.WithCancel(context.Background())
	done := n.Run(ctx, bus)
	bus.Publish(sampleEvent())

	deadline := time.Now().Add(time.Second)
	for len(mc.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	if len(mc.messages()) != 1 {
		t.Fatalf("expected forwarded event")
	}
	n.Close()
	if !mc.disconnected {
		t.Fatalf("expected disconnect")
	}
}

func TestRunReportsUndeliveredChanges(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("broker gone"), fmt.Errorf("broker gone")}}
	useMock(t, mc)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", MaxRetries: 1})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	n.sleep = func(time.Duration) {}
	rec := &monitoring.Recorder{}
	n.SetMonitor(rec)

	bus := eventbus.New[events.TimelineChanged]()
	done := n.Run(context.Background(), bus)
	bus.Publish(sampleEvent())
	deadline := time.Now().Add(time.Second)
	for len(mc.messages()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	bus.Close()
	<-done
	if len(rec.Errors) != 1 || rec.Tags[0]["command_id"] != "c1" {
		t.Fatalf("expected one captured failure, got %v %v", rec.Errors, rec.Tags)
	}
}

func TestConnectError(t *testing.T) {
	mc := &mockClient{connectErr: fmt.Errorf("refused")}
	useMock(t, mc)
	if _, err := NewNotifier(Config{Broker: "tcp://localhost:1883"}); err == nil {
		t.Fatal("expected connect error")
	}
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements pahoClient for tests
type mockClient struct {
	mu           sync.Mutex
	opts         *paho.ClientOptions
	published    []published
	publishErrs  []error
	connectErr   error
	disconnected bool
}

func (m *mockClient) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	m.disconnected = true
	m.mu.Unlock()
}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic, qos, retained, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
