package otelexport

import (
	"context"
	"testing"

	"github.com/serenichron/openclaw-memory-mem0/internal/config"
)

func TestNew_EmptyEndpoint(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Error("expected error for empty endpoint")
	}
}

func TestNew_Protocols(t *testing.T) {
	for _, protocol := range []string{"grpc", "http", ""} {
		exp, err := New(context.Background(), Config{
			Endpoint: "localhost:4317",
			Protocol: protocol,
			Insecure: true,
			Headers:  map[string]string{"x-api-key": "k"},
		})
		if err != nil {
			t.Fatalf("protocol %q: %v", protocol, err)
		}
		if exp.TracerProvider() == nil {
			t.Errorf("protocol %q: nil provider", protocol)
		}
		if err := exp.Shutdown(context.Background()); err != nil {
			t.Logf("protocol %q: shutdown: %v", protocol, err)
		}
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	exp, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false, Endpoint: "localhost:4317"}, "test")
	if err != nil || exp != nil {
		t.Errorf("got %v, %v", exp, err)
	}
}

func TestSetup_EnabledWithoutEndpoint(t *testing.T) {
	if _, err := Setup(context.Background(), config.TelemetryConfig{Enabled: true}, "test"); err == nil {
		t.Error("expected error")
	}
}

func TestFromTelemetry(t *testing.T) {
	cfg := FromTelemetry(config.TelemetryConfig{
		Endpoint:    "collector:4318",
		Protocol:    "http",
		Insecure:    true,
		ServiceName: "svc",
	}, "1.2.3")
	if cfg.Endpoint != "collector:4318" || cfg.Protocol != "http" || !cfg.Insecure || cfg.ServiceName != "svc" || cfg.ServiceVersion != "1.2.3" {
		t.Errorf("got %+v", cfg)
	}
}

func TestExporter_NilSafe(t *testing.T) {
	var exp *Exporter
	if err := exp.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	exp.Install()
	if exp.TracerProvider() == nil {
		t.Error("nil exporter should fall back to the global provider")
	}
}
