package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// given) into the process environment. Existing variables win. Missing files
// are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("config: failed to load env file", "file", f, "error", err)
		}
	}
}

// applyEnv overlays MEM0_* environment variables on cfg.
func applyEnv(cfg *Config) {
	envString("MEM0_BASE_URL", &cfg.BaseURL)
	envString("MEM0_USER_ID", &cfg.UserID)
	envString("MEM0_API_KEY", &cfg.APIKey)
	envBool("MEM0_AUTO_CAPTURE", &cfg.AutoCapture)
	envBool("MEM0_AUTO_RECALL", &cfg.AutoRecall)
	envInt("MEM0_RECALL_LIMIT", &cfg.RecallLimit)
	envFloat("MEM0_RECALL_THRESHOLD", &cfg.RecallThreshold)
	envInt("MEM0_HEALTH_TIMEOUT_MS", &cfg.HealthTimeoutMs)
	envBool("MEM0_SCRUB_TOOL_OUTPUT", &cfg.ScrubToolOutput)

	envString("MEM0_LOG_LEVEL", &cfg.Logging.Level)
	envString("MEM0_LOG_FORMAT", &cfg.Logging.Format)

	envString("MEM0_SERVER_LISTEN", &cfg.Server.Listen)
	envString("MEM0_SERVER_TOKEN", &cfg.Server.Token)
	envInt("MEM0_SERVER_RATE_LIMIT_RPM", &cfg.Server.RateLimitRPM)
	envInt("MEM0_TOOL_CALLS_PER_MINUTE", &cfg.Server.ToolCallsPerMinute)

	envString("MEM0_OTEL_ENDPOINT", &cfg.Telemetry.Endpoint)
	envString("MEM0_OTEL_PROTOCOL", &cfg.Telemetry.Protocol)
	envBool("MEM0_OTEL_INSECURE", &cfg.Telemetry.Insecure)
	if cfg.Telemetry.Endpoint != "" && os.Getenv("MEM0_OTEL_ENDPOINT") != "" {
		cfg.Telemetry.Enabled = true
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("config: ignoring invalid boolean", "key", key, "value", v)
		return
	}
	*dst = b
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("config: ignoring invalid integer", "key", key, "value", v)
		return
	}
	*dst = n
}

func envFloat(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		slog.Warn("config: ignoring invalid number", "key", key, "value", v)
		return
	}
	*dst = f
}
