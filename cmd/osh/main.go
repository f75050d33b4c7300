// Command osh parses a pipeline off the command line, runs it to
// completion, and prints each output tuple to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/geophile/osh/internal/cliparser"
	"github.com/geophile/osh/internal/config"
	"github.com/geophile/osh/internal/logging"
	"github.com/geophile/osh/internal/pipeline"
	"github.com/geophile/osh/internal/spawn"
)

func main() {
	verbose := flag.Bool("v", false, "print the parsed pipeline before running it")
	dev := flag.Bool("dev", false, "use human-readable development logging")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *verbose {
		pipeline.Verbosity = 1
	} else {
		pipeline.Verbosity = cfg.Engine.Verbosity
	}

	if *dev {
		logging.SetDefault(logging.NewDevelopment())
	} else {
		logging.SetDefault(logging.NewDefault())
	}
	defer logging.Default().Sync()

	p, err := cliparser.Parse(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "osh:", err)
		os.Exit(1)
	}

	cmd := pipeline.NewCommand(p, spawn.KillAll)
	cmd.SetReceiver(stdoutReceiver{})
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

// stdoutReceiver formats each output tuple the way osh's original prints
// a Python tuple: parenthesized, comma-separated fields.
type stdoutReceiver struct{}

func (stdoutReceiver) Receive(ctx context.Context, object interface{}) error {
	tuple, ok := object.([]interface{})
	if !ok {
		fmt.Println(object)
		return nil
	}
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = fmt.Sprintf("%v", v)
	}
	fmt.Printf("(%s)\n", strings.Join(parts, ", "))
	return nil
}

func (stdoutReceiver) ReceiveComplete(ctx context.Context) error { return nil }
