package config

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxUserIDLength bounds the user identifier sent as user_id on every request.
const MaxUserIDLength = 255

// Validate checks the fields a client cannot work without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid baseUrl %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid baseUrl %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid baseUrl %q: missing host", c.BaseURL)
	}

	if err := ValidateUserID(c.UserID); err != nil {
		return err
	}
	if c.RecallLimit < 1 {
		return fmt.Errorf("recallLimit must be >= 1, got %d", c.RecallLimit)
	}
	if c.RecallThreshold < 0 || c.RecallThreshold > 1 {
		return fmt.Errorf("recallThreshold must be within [0, 1], got %g", c.RecallThreshold)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Server.RateLimitRPM < 0 || c.Server.ToolCallsPerMinute < 0 {
		return fmt.Errorf("server rate limits must not be negative")
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", c.Telemetry.Protocol)
		}
	}
	return nil
}

// ValidateUserID rejects empty or oversized user identifiers.
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("userId must not be empty")
	}
	if len(id) > MaxUserIDLength {
		return fmt.Errorf("userId too long: %d chars (max %d)", len(id), MaxUserIDLength)
	}
	return nil
}
