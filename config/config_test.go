package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `schedule:
  orders_path: "data/orders.csv"
  schedule_path: "data/schedule.csv"
  timezone: "Europe/Paris"
extractor:
  enabled: true
  api_key: "secret"
  timeout_ms: 1500
command_log:
  backend: "sqlite"
  path: "history.db"
metrics:
  sinks:
    - type: "nop"
  prometheus_port: ":2112"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  use_tls: false
api:
  listen: ":8080"
  token: "t0k"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"orders_path", cfg.Schedule.OrdersPath, "data/orders.csv"},
		{"timezone", cfg.Schedule.Timezone, "Europe/Paris"},
		{"default_move_time", cfg.Schedule.DefaultMoveTime, "08:00"},
		{"extractor.enabled", cfg.Extractor.Enabled, true},
		{"extractor.key", cfg.Extractor.Key(), "secret"},
		{"extractor.timeout", cfg.Extractor.Timeout(), 1500 * time.Millisecond},
		{"extractor.model", cfg.Extractor.Model, "gemini-2.5-flash"},
		{"breaker_threshold", cfg.Extractor.BreakerThreshold, 3},
		{"command_log.backend", cfg.CommandLog.Backend, "sqlite"},
		{"command_log.capacity", cfg.CommandLog.Capacity, 50},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":2112"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"mqtt.topic", cfg.MQTT.Topic, "wheelsched/timeline/changes"},
		{"api.listen", cfg.API.Listen, ":8080"},
		{"api.token", cfg.API.Token, "t0k"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"schedule":{"timezone":"UTC"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_SCHEDULE__DEFAULT_MOVE_TIME", "09:30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Schedule.DefaultMoveTime != "09:30" {
		t.Fatalf("env override not applied: %q", cfg.Schedule.DefaultMoveTime)
	}
	if cfg.MQTT.Enabled() {
		t.Fatalf("mqtt should be disabled without a broker")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.Schedule.Timezone != DefaultTimezone {
		t.Fatalf("unexpected timezone %q", cfg.Schedule.Timezone)
	}
	if cfg.Schedule.OrdersPath != "scooter_orders.csv" || cfg.Schedule.SchedulePath != "scooter_schedule.csv" {
		t.Fatalf("unexpected dataset paths %+v", cfg.Schedule)
	}
	if cfg.CommandLog.Backend != "memory" {
		t.Fatalf("unexpected backend %q", cfg.CommandLog.Backend)
	}
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"config.toml": "",
		"zone.yaml":   "schedule:\n  timezone: Mars/Olympus\n",
		"clock.yaml":  "schedule:\n  default_move_time: noon\n",
		"log.yaml":    "command_log:\n  backend: redis\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestExtractorKeyFromEnv(t *testing.T) {
	t.Setenv("WHEELSCHED_TEST_KEY", "from-env")
	c := ExtractorConfig{APIKeyEnv: "WHEELSCHED_TEST_KEY"}
	if c.Key() != "from-env" {
		t.Fatalf("unexpected key %q", c.Key())
	}
	mc := c.ModelConfig("Asia/Makassar")
	if mc.APIKey != "from-env" || mc.Zone != "Asia/Makassar" {
		t.Fatalf("unexpected model config %+v", mc)
	}
}
