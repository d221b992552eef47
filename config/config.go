// Package config loads the simulator configuration from YAML or JSON
// files with SR_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/solarace/infra/telemetry"
)

type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Battery    BatteryConfig    `json:"battery"`
	Motor      MotorConfig      `json:"motor"`
	Solar      SolarConfig      `json:"solar"`
	Route      RouteConfig      `json:"route"`
	Metrics    MetricsConfig    `json:"metrics"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
	History    HistoryConfig    `json:"history"`
	Output     OutputConfig     `json:"output"`
}

// Load reads the file at path, applies SR_ environment overrides
// (SR_SIMULATION__MAX_DAYS=60 sets simulation.max_days), fills defaults
// and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// The provider delim must match the dotted keys the callback emits.
	if err := k.Load(env.Provider("SR_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sr_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults on every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Battery.SetDefaults()
	c.Motor.SetDefaults()
	c.Solar.SetDefaults()
	c.Metrics.SetDefaults()
	c.History.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Battery.Validate(); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// MetricsConfig selects the observability sinks for run records.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`

	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
}

// TelemetryConfig enables the MQTT day-progress publisher.
type TelemetryConfig struct {
	Enabled bool             `json:"enabled"`
	MQTT    telemetry.Config `json:"mqtt"`
}

func (c TelemetryConfig) Validate() error {
	if c.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker is required when telemetry is enabled")
	}
	return nil
}

// HistoryConfig enables the SQLite run-history store.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

func (c *HistoryConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "runs.db"
	}
}

// OutputConfig selects where the finished itinerary is written. Empty
// paths skip the corresponding format.
type OutputConfig struct {
	JSONPath string `json:"json_path"`
	CSVPath  string `json:"csv_path"`
}

// RouteConfig points at the route description files. Both are optional;
// a missing terrain file means a flat route and a missing stops file
// means no control stops.
type RouteConfig struct {
	TerrainCSV      string `json:"terrain_csv"`
	ControlStopsCSV string `json:"control_stops_csv"`
}
