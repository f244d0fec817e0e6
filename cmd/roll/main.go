package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	rollcmd "github.com/louisbranch/diceroll/internal/cmd/roll"
	"github.com/louisbranch/diceroll/internal/platform/config"
)

// main rolls the expression given as arguments, or starts a prompt.
func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: roll [flags] [expression ...]")
		flag.PrintDefaults()
	}
	cfg, err := rollcmd.ParseConfig(flag.CommandLine, os.Args[1:], os.Environ())
	if err != nil {
		config.ExitCodef(2, "parse flags: %v", err)
	}
	log.SetPrefix("[ROLL] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rollcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, rollcmd.ErrRollFailed) {
			stop()
			os.Exit(1)
		}
		log.Fatalf("roll: %v", err)
	}
}
