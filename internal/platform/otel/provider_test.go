package otel

import (
	"context"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("DICEROLL_OTEL_ENDPOINT", "")
	t.Setenv("DICEROLL_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("DICEROLL_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("DICEROLL_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no export happens.
	t.Setenv("DICEROLL_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("DICEROLL_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupRejectsInvalidSampleRatio(t *testing.T) {
	t.Setenv("DICEROLL_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("DICEROLL_OTEL_SAMPLE_RATIO", "often")

	if _, err := Setup(context.Background(), "test-service"); err == nil {
		t.Fatal("expected error for invalid sample ratio")
	}
}

func TestSamplerHonoursRatio(t *testing.T) {
	if got := sampler(1).Description(); got != sdktrace.AlwaysSample().Description() {
		t.Fatalf("sampler(1) = %q, want always on", got)
	}
	if got := sampler(0.25).Description(); !strings.Contains(got, "TraceIDRatioBased{0.25}") {
		t.Fatalf("sampler(0.25) = %q, want a ratio sampler", got)
	}
}
