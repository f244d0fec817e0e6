// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"

	platformcmd "github.com/louisbranch/diceroll/internal/platform/cmd"
	"github.com/louisbranch/diceroll/internal/services/mcp/service"
	"github.com/louisbranch/diceroll/internal/services/roll"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr  string `env:"DICEROLL_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"DICEROLL_MCP_TRANSPORT" envDefault:"stdio"`
	MaxDice   int    `env:"DICEROLL_MAX_DICE"      envDefault:"1000"`
}

// ParseConfig parses environ and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, environ []string) (Config, error) {
	var cfg Config
	err := platformcmd.ParseConfigFromArgs(&cfg, environ, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
		fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
		fs.IntVar(&cfg.MaxDice, "max-dice", cfg.MaxDice, "maximum dice one term may roll, 0 for the engine ceiling")
	})
	if err != nil {
		return Config{}, err
	}
	if cfg.MaxDice < 0 {
		return Config{}, fmt.Errorf("max dice must not be negative, got %d", cfg.MaxDice)
	}
	return cfg, nil
}

// Run starts the MCP server.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			Transport: service.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
		}, roll.NewService(roll.WithMaxDice(cfg.MaxDice)))
	})
}
