package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
emodul:
  username: "user@example.com"
  password: "secret"
  poll_interval: 30
  language: "pl"
  modules:
    - udid: "a1b2c3"
      name: "House"
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-bridge"
  qos: 1
database:
  path: "/tmp/test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.EModul.Username != "user@example.com" {
		t.Errorf("EModul.Username = %q, want %q", cfg.EModul.Username, "user@example.com")
	}
	if cfg.EModul.PollInterval != 30 {
		t.Errorf("EModul.PollInterval = %d, want 30", cfg.EModul.PollInterval)
	}
	if len(cfg.EModul.Modules) != 1 || cfg.EModul.Modules[0].UDID != "a1b2c3" {
		t.Errorf("EModul.Modules = %v, want one module with udid a1b2c3", cfg.EModul.Modules)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}

	// Defaults survive for unset keys.
	if cfg.EModul.Timeout != 30 {
		t.Errorf("EModul.Timeout = %d, want default 30", cfg.EModul.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	configPath := writeConfig(t, `
emodul:
  username: "user@example.com"
database:
  path: "/tmp/test.db"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for missing password, got nil")
	}
	if !strings.Contains(err.Error(), "emodul.password") {
		t.Errorf("error %q does not mention emodul.password", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
emodul:
  username: "user@example.com"
  password: "from-file"
database:
  path: "/tmp/test.db"
`)

	t.Setenv("TECHBRIDGE_EMODUL_PASSWORD", "from-env")
	t.Setenv("TECHBRIDGE_MQTT_HOST", "env-broker")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.EModul.Password != "from-env" {
		t.Errorf("EModul.Password = %q, want env override", cfg.EModul.Password)
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
}

func TestValidate_InvalidQoS(t *testing.T) {
	cfg := defaultConfig()
	cfg.EModul.Username = "u"
	cfg.EModul.Password = "p"
	cfg.MQTT.QoS = 3

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for QoS 3, got nil")
	}
}

func TestValidate_ModuleWithoutUDID(t *testing.T) {
	cfg := defaultConfig()
	cfg.EModul.Username = "u"
	cfg.EModul.Password = "p"
	cfg.EModul.Modules = []ModuleConfig{{Name: "nameless"}}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for module without udid, got nil")
	}
}
