// Package roll parses roll command flags and rolls expressions once or from
// an interactive prompt.
package roll

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/louisbranch/diceroll/internal/dice"
	platformcmd "github.com/louisbranch/diceroll/internal/platform/cmd"
	"github.com/louisbranch/diceroll/internal/random"
	rollsvc "github.com/louisbranch/diceroll/internal/services/roll"
)

// ErrRollFailed indicates a one-shot roll that could not be parsed or
// evaluated. The failure has already been written to the error output.
var ErrRollFailed = errors.New("roll failed")

// Config holds roll command configuration.
type Config struct {
	Advanced bool   `env:"DICEROLL_ADVANCED"`
	MaxDice  int    `env:"DICEROLL_MAX_DICE" envDefault:"1000"`
	Seed     string `env:"DICEROLL_SEED"`
	History  string `env:"DICEROLL_HISTORY"`

	// Expression is the positional arguments joined by spaces. Empty starts
	// the interactive prompt.
	Expression string
}

// ParseConfig parses environ and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, environ []string) (Config, error) {
	var cfg Config
	err := platformcmd.ParseConfigFromArgs(&cfg, environ, fs, args, func(fs *flag.FlagSet, cfg *Config) {
		fs.BoolVar(&cfg.Advanced, "advanced", cfg.Advanced, "allow parenthesized dice counts and sides, e.g. (1d4)d6")
		fs.IntVar(&cfg.MaxDice, "max-dice", cfg.MaxDice, "maximum dice one term may roll, 0 for the engine ceiling")
		fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "replay rolls from this seed")
		fs.StringVar(&cfg.History, "history", cfg.History, "prompt history file")
	})
	if err != nil {
		return Config{}, err
	}
	if cfg.MaxDice < 0 {
		return Config{}, fmt.Errorf("max dice must not be negative, got %d", cfg.MaxDice)
	}
	if _, err := cfg.rng(); err != nil {
		return Config{}, err
	}
	cfg.Expression = strings.TrimSpace(strings.Join(fs.Args(), " "))
	return cfg, nil
}

// rng turns the configured seed into a replay request.
func (c Config) rng() (*random.RngRequest, error) {
	if strings.TrimSpace(c.Seed) == "" {
		return nil, nil
	}
	seed, err := strconv.ParseUint(strings.TrimSpace(c.Seed), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seed %q: %w", c.Seed, err)
	}
	return &random.RngRequest{Seed: &seed, RollMode: random.RollModeReplay}, nil
}

// Run rolls cfg.Expression once, or starts the prompt when it is empty.
func Run(ctx context.Context, cfg Config, stdout, stderr io.Writer) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceRoll, func(ctx context.Context) error {
		r, err := newRoller(cfg, stdout, stderr)
		if err != nil {
			return err
		}
		if cfg.Expression != "" {
			if !r.roll(ctx, cfg.Expression) {
				return ErrRollFailed
			}
			return nil
		}
		return r.prompt(ctx, cfg.History)
	})
}

// roller writes roll results and failures for one command run.
type roller struct {
	service  *rollsvc.Service
	rng      *random.RngRequest
	advanced bool
	out      io.Writer
	errOut   io.Writer
}

func newRoller(cfg Config, stdout, stderr io.Writer) (*roller, error) {
	rng, err := cfg.rng()
	if err != nil {
		return nil, err
	}
	return &roller{
		service:  rollsvc.NewService(rollsvc.WithMaxDice(cfg.MaxDice)),
		rng:      rng,
		advanced: cfg.Advanced,
		out:      stdout,
		errOut:   stderr,
	}, nil
}

// roll rolls expression and reports whether it succeeded.
func (r *roller) roll(ctx context.Context, expression string) bool {
	resp, err := r.service.Roll(ctx, rollsvc.Request{
		Expression: expression,
		Advanced:   r.advanced,
		Rng:        r.rng,
	})
	if err != nil {
		r.printError(expression, err)
		return false
	}

	fmt.Fprintf(r.out, "%s = %s\n", resp.Canonical, resp.Display)
	if len(resp.Rolls) > 0 {
		// The seed replays this roll with -seed.
		fmt.Fprintf(r.out, "  %s  (seed %d)\n", resp.Trace, resp.Seed)
	}
	return true
}

func (r *roller) printError(expression string, err error) {
	var diag *dice.Diagnostics
	var evalErr *dice.EvaluationError
	switch {
	case errors.As(err, &diag):
		fmt.Fprintf(r.errOut, "could not understand roll:\n%s\n%s\n", indent(diag.Snippet()), diag.Error())
	case errors.As(err, &evalErr):
		fmt.Fprintln(r.errOut, "roll does not make sense:")
		if evalErr.Pos >= 0 {
			fmt.Fprintln(r.errOut, indent(dice.Caret(expression, evalErr.Pos)))
		}
		fmt.Fprintln(r.errOut, evalErr.Error())
	default:
		fmt.Fprintf(r.errOut, "error: %v\n", err)
	}
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}
