package roll

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/peterh/liner"
)

func parseTestConfig(t *testing.T, args []string, environ []string) Config {
	t.Helper()
	fs := flag.NewFlagSet("roll", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, args, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestParseConfigDefaults(t *testing.T) {
	cfg := parseTestConfig(t, nil, []string{})
	if cfg.Advanced {
		t.Fatal("expected advanced mode off by default")
	}
	if cfg.MaxDice != 1000 {
		t.Fatalf("expected default max dice 1000, got %d", cfg.MaxDice)
	}
	if cfg.Seed != "" || cfg.History != "" || cfg.Expression != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	environ := []string{"DICEROLL_MAX_DICE=20", "DICEROLL_SEED=7", "DICEROLL_HISTORY=/tmp/roll_history"}
	args := []string{"-advanced", "-seed", "9", "4d6kh3", "+", "2"}
	cfg := parseTestConfig(t, args, environ)
	if !cfg.Advanced {
		t.Fatal("expected flag to enable advanced mode")
	}
	if cfg.MaxDice != 20 {
		t.Fatalf("expected env max dice, got %d", cfg.MaxDice)
	}
	if cfg.Seed != "9" {
		t.Fatalf("expected flag seed, got %q", cfg.Seed)
	}
	if cfg.History != "/tmp/roll_history" {
		t.Fatalf("expected env history, got %q", cfg.History)
	}
	if cfg.Expression != "4d6kh3 + 2" {
		t.Fatalf("expected joined expression, got %q", cfg.Expression)
	}
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	tcs := []struct {
		args    []string
		environ []string
	}{
		{args: []string{"-seed", "abc"}},
		{args: []string{"-seed", "-1"}},
		{args: []string{"-max-dice", "-5"}},
		{environ: []string{"DICEROLL_MAX_DICE=lots"}},
	}
	for _, tc := range tcs {
		fs := flag.NewFlagSet("roll", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		if _, err := ParseConfig(fs, tc.args, tc.environ); err == nil {
			t.Fatalf("ParseConfig(%v, %v) expected error", tc.args, tc.environ)
		}
	}
}

func newTestRoller(t *testing.T, cfg Config) (*roller, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	r, err := newRoller(cfg, &out, &errOut)
	if err != nil {
		t.Fatalf("newRoller returned error: %v", err)
	}
	return r, &out, &errOut
}

func TestRollPrintsResultAndTrace(t *testing.T) {
	r, out, _ := newTestRoller(t, Config{Seed: "0", MaxDice: 1000})

	if !r.roll(context.Background(), "2d12+1") {
		t.Fatal("expected roll to succeed")
	}
	if want := "2d12 + 1 = 15\n  2d12 [7, 7] + 1  (seed 0)\n"; out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

// TestRollPrintedSeedReplays ensures the seed printed for a live roll
// reproduces the same dice through -seed.
func TestRollPrintedSeedReplays(t *testing.T) {
	live, out, _ := newTestRoller(t, Config{})
	if !live.roll(context.Background(), "6d20") {
		t.Fatal("expected roll to succeed")
	}

	text := out.String()
	start := strings.LastIndex(text, "(seed ")
	end := strings.LastIndex(text, ")")
	if start < 0 || end < start {
		t.Fatalf("output %q does not report a seed", text)
	}
	seed := text[start+len("(seed ") : end]

	fs := flag.NewFlagSet("roll", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := ParseConfig(fs, []string{"-seed", seed}, []string{})
	if err != nil {
		t.Fatalf("ParseConfig with seed %s returned error: %v", seed, err)
	}
	replay, replayOut, _ := newTestRoller(t, cfg)
	if !replay.roll(context.Background(), "6d20") {
		t.Fatal("expected replay to succeed")
	}
	if replayOut.String() != text {
		t.Fatalf("replay output = %q, want %q", replayOut.String(), text)
	}
}

func TestRollOmitsTraceWithoutDice(t *testing.T) {
	r, out, _ := newTestRoller(t, Config{})

	if !r.roll(context.Background(), "7//2 + 0.5") {
		t.Fatal("expected roll to succeed")
	}
	if want := "7//2 + 0.5 = 3.5\n"; out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestRollPrintsSyntaxErrorWithCaret(t *testing.T) {
	r, out, errOut := newTestRoller(t, Config{})

	if r.roll(context.Background(), "1+") {
		t.Fatal("expected roll to fail")
	}
	want := "could not understand roll:\n  1+\n    ^\nat position 2, expected one of: '(', '-', 'd', digit: tried to parse a number\n"
	if errOut.String() != want {
		t.Fatalf("error output = %q, want %q", errOut.String(), want)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRollPrintsEvaluationErrorWithCaret(t *testing.T) {
	r, _, errOut := newTestRoller(t, Config{})

	if r.roll(context.Background(), "3d0") {
		t.Fatal("expected roll to fail")
	}
	want := "roll does not make sense:\n  3d0\n   ^\nat position 1, dice count/sides must be a non-negative integer: cannot roll a die with 0 sides\n"
	if errOut.String() != want {
		t.Fatalf("error output = %q, want %q", errOut.String(), want)
	}

	errOut.Reset()
	r.roll(context.Background(), "1/0")
	if want := "roll does not make sense:\ndivision by zero: 1/0\n"; errOut.String() != want {
		t.Fatalf("error output = %q, want %q", errOut.String(), want)
	}
}

func TestRunOneShot(t *testing.T) {
	t.Setenv("DICEROLL_OTEL_ENDPOINT", "")
	var out, errOut bytes.Buffer

	err := Run(context.Background(), Config{Expression: "2d12", Seed: "0"}, &out, &errOut)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if want := "2d12 = 14\n  2d12 [7, 7]  (seed 0)\n"; out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}

	err = Run(context.Background(), Config{Expression: "2x"}, &out, &errOut)
	if !errors.Is(err, ErrRollFailed) {
		t.Fatalf("Run error = %v, want %v", err, ErrRollFailed)
	}
}

// scriptedLines replays canned prompt input.
type scriptedLines struct {
	lines   []string
	end     error
	history []string
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", s.end
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func TestLoopRollsUntilEOF(t *testing.T) {
	r, out, errOut := newTestRoller(t, Config{Seed: "0"})
	lines := &scriptedLines{lines: []string{"2d12", "", "(1d4)d6", ":advanced", "1+"}, end: io.EOF}

	if err := r.loop(context.Background(), lines); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}
	want := "2d12 = 14\n  2d12 [7, 7]  (seed 0)\nadvanced mode on\n\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if !bytes.Contains(errOut.Bytes(), []byte("could not understand roll:")) {
		t.Fatalf("expected syntax errors, got %q", errOut.String())
	}
	if len(lines.history) != 4 {
		t.Fatalf("history = %v, want 4 entries", lines.history)
	}
	if !r.advanced {
		t.Fatal("expected advanced mode to be toggled on")
	}
}

func TestLoopStopsOnExitCommandAndAbort(t *testing.T) {
	r, out, _ := newTestRoller(t, Config{})
	lines := &scriptedLines{lines: []string{":exit", "2d6"}, end: io.EOF}
	if err := r.loop(context.Background(), lines); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}
	if len(lines.lines) != 1 || out.Len() != 0 {
		t.Fatalf("expected loop to stop at :exit, output %q", out.String())
	}

	aborted := &scriptedLines{end: liner.ErrPromptAborted}
	if err := r.loop(context.Background(), aborted); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}
}

func TestLoopReportsReadErrors(t *testing.T) {
	r, _, _ := newTestRoller(t, Config{})
	boom := errors.New("terminal gone")
	if err := r.loop(context.Background(), &scriptedLines{end: boom}); !errors.Is(err, boom) {
		t.Fatalf("loop error = %v, want %v", err, boom)
	}
}

func TestLoopStopsWhenContextDone(t *testing.T) {
	r, _, _ := newTestRoller(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lines := &scriptedLines{lines: []string{"2d6"}, end: io.EOF}
	if err := r.loop(ctx, lines); err != nil {
		t.Fatalf("loop returned error: %v", err)
	}
	if len(lines.lines) != 1 {
		t.Fatal("expected no input to be read after cancellation")
	}
}

func TestCommandHelpAndUnknown(t *testing.T) {
	r, out, errOut := newTestRoller(t, Config{})
	if r.command(":help") {
		t.Fatal("help should not exit")
	}
	if !bytes.Contains(out.Bytes(), []byte(":advanced")) {
		t.Fatalf("help output = %q", out.String())
	}
	if r.command(":dance") {
		t.Fatal("unknown command should not exit")
	}
	if !bytes.Contains(errOut.Bytes(), []byte("unknown command :dance")) {
		t.Fatalf("error output = %q", errOut.String())
	}
}
