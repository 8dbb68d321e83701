// Package config holds the plugin configuration: defaults, decoding of the
// host-supplied opaque object, file/env loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// Defaults applied to any field the host or config file leaves out.
const (
	DefaultBaseURL         = "http://localhost:8000"
	DefaultUserID          = "default"
	DefaultRecallLimit     = 5
	DefaultRecallThreshold = 0.4
	DefaultHealthTimeoutMs = 5000
	DefaultListen          = "127.0.0.1:18790"
	DefaultServiceName     = "openclaw-memory-mem0"
)

// Config is the plugin configuration. Treat it as immutable once built:
// a reload produces a new Config rather than mutating the old one.
type Config struct {
	BaseURL         string  `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	UserID          string  `json:"userId" yaml:"userId" mapstructure:"userId"`
	APIKey          string  `json:"apiKey,omitempty" yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	AutoCapture     bool    `json:"autoCapture" yaml:"autoCapture" mapstructure:"autoCapture"`
	AutoRecall      bool    `json:"autoRecall" yaml:"autoRecall" mapstructure:"autoRecall"`
	RecallLimit     int     `json:"recallLimit" yaml:"recallLimit" mapstructure:"recallLimit"`
	RecallThreshold float64 `json:"recallThreshold" yaml:"recallThreshold" mapstructure:"recallThreshold"`
	HealthTimeoutMs int     `json:"healthTimeoutMs" yaml:"healthTimeoutMs" mapstructure:"healthTimeoutMs"`

	// ScrubToolOutput redacts vendor API keys from tool output. Off by
	// default: recall and store echo memory text verbatim.
	ScrubToolOutput bool `json:"scrubToolOutput,omitempty" yaml:"scrubToolOutput,omitempty" mapstructure:"scrubToolOutput"`

	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry" mapstructure:"telemetry"`
}

// LoggingConfig selects the slog handler installed by the CLI.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" mapstructure:"format"` // text or json
}

// ServerConfig configures the sidecar HTTP surface.
type ServerConfig struct {
	Listen         string `json:"listen" yaml:"listen" mapstructure:"listen"`
	Token          string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	RateLimitRPM   int    `json:"rateLimitRpm,omitempty" yaml:"rateLimitRpm,omitempty" mapstructure:"rateLimitRpm"`
	RateLimitBurst int    `json:"rateLimitBurst,omitempty" yaml:"rateLimitBurst,omitempty" mapstructure:"rateLimitBurst"`

	// ToolCallsPerMinute caps tool executions per agent id; 0 disables.
	ToolCallsPerMinute int `json:"toolCallsPerMinute,omitempty" yaml:"toolCallsPerMinute,omitempty" mapstructure:"toolCallsPerMinute"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint    string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Protocol    string            `json:"protocol,omitempty" yaml:"protocol,omitempty" mapstructure:"protocol"` // grpc (default) or http
	Insecure    bool              `json:"insecure,omitempty" yaml:"insecure,omitempty" mapstructure:"insecure"`
	ServiceName string            `json:"serviceName,omitempty" yaml:"serviceName,omitempty" mapstructure:"serviceName"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		UserID:          DefaultUserID,
		AutoCapture:     true,
		AutoRecall:      true,
		RecallLimit:     DefaultRecallLimit,
		RecallThreshold: DefaultRecallThreshold,
		HealthTimeoutMs: DefaultHealthTimeoutMs,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Listen: DefaultListen,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: DefaultServiceName,
		},
	}
}

// HealthTimeout returns the bound on the one-time health probe.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutMs) * time.Millisecond
}

// FromMap builds a Config from the opaque object a host passes to the plugin.
// Absent keys keep their defaults; string-typed scalars ("true", "5") are accepted.
func FromMap(raw map[string]interface{}) (*Config, error) {
	cfg := Default()
	if len(raw) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("config decoder: %w", err)
		}
		if err := dec.Decode(raw); err != nil {
			return nil, fmt.Errorf("decode plugin config: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToMap renders the config as the opaque object a host would pass to the
// plugin, so a file-loaded config can go through the same path as FromMap.
func (c *Config) ToMap() map[string]interface{} {
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// Load reads the config file at path (JSON5, or YAML by extension), applies
// MEM0_* environment overrides, fills defaults and validates the result.
// A missing file is not an error: defaults plus env are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeFile(path, data, cfg); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			// defaults + env only
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json5.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

// applyDefaults fills zero-valued fields. Booleans are left alone: their
// defaults come from Default() before decoding, so an explicit false survives.
func (c *Config) applyDefaults() {
	d := Default()
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		c.UserID = d.UserID
	}
	if c.RecallLimit <= 0 {
		c.RecallLimit = d.RecallLimit
	}
	if c.HealthTimeoutMs <= 0 {
		c.HealthTimeoutMs = d.HealthTimeoutMs
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Server.Listen == "" {
		c.Server.Listen = d.Server.Listen
	}
	if c.Telemetry.Protocol == "" {
		c.Telemetry.Protocol = d.Telemetry.Protocol
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}
}

// DefaultPath returns ~/.openclaw/mem0.json5.
func DefaultPath() string {
	return ExpandHome(filepath.Join("~", ".openclaw", "mem0.json5"))
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
