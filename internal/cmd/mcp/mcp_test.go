package mcp

import (
	"context"
	"flag"
	"io"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil, []string{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.MaxDice != 1000 {
		t.Fatalf("expected default max dice 1000, got %d", cfg.MaxDice)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	environ := []string{"DICEROLL_MCP_HTTP_ADDR=env-http", "DICEROLL_MAX_DICE=50"}
	args := []string{"-http-addr", "flag-http", "-transport", "http"}
	cfg, err := ParseConfig(fs, args, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected transport http, got %q", cfg.Transport)
	}
	if cfg.MaxDice != 50 {
		t.Fatalf("expected env max dice, got %d", cfg.MaxDice)
	}
}

func TestParseConfigRejectsNegativeMaxDice(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-max-dice", "-1"}, []string{}); err == nil {
		t.Fatal("expected error for negative max dice")
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	t.Setenv("DICEROLL_OTEL_ENDPOINT", "")
	err := Run(context.Background(), Config{Transport: "carrier-pigeon"})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("Run error = %v, want unsupported transport", err)
	}
}
