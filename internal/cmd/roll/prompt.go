package roll

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

const promptText = "roll> "

const promptHelp = `Enter a dice expression such as 2d6+3, 4d6kh3, 10d%dl3 or 2d20h+5.
Commands:
  :advanced  toggle parenthesized dice counts and sides, e.g. (1d4)d6
  :help      show this message
  :exit      leave the prompt (Ctrl+C and Ctrl+D work too)`

// lineReader is the part of *liner.State the prompt loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// prompt runs the interactive loop on the terminal until exit.
func (r *roller) prompt(ctx context.Context, historyPath string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	loadHistory(line, historyPath)
	err := r.loop(ctx, line)
	saveHistory(line, historyPath)
	return err
}

// loop reads and rolls lines until the input ends, the user exits or ctx is
// done.
func (r *roller) loop(ctx context.Context, line lineReader) error {
	for ctx.Err() == nil {
		input, err := line.Prompt(promptText)
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if exit := r.command(input); exit {
				return nil
			}
			continue
		}
		r.roll(ctx, input)
	}
	return nil
}

// command handles a prompt command and reports whether to exit.
func (r *roller) command(input string) bool {
	switch strings.ToLower(strings.TrimPrefix(input, ":")) {
	case "exit", "quit", "q":
		return true
	case "advanced":
		r.advanced = !r.advanced
		state := "off"
		if r.advanced {
			state = "on"
		}
		fmt.Fprintf(r.out, "advanced mode %s\n", state)
	case "help", "h", "?":
		_, _ = io.WriteString(r.out, promptHelp+"\n")
	default:
		fmt.Fprintf(r.errOut, "unknown command %s, try :help\n", input)
	}
	return false
}

func loadHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		_ = f.Close()
	}
}
