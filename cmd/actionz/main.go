// Command actionz replays scripted interactions against rate adapters,
// drives fetch pipelines from the terminal and serves a demo lookup
// backend.
//
// Usage:
//
//	actionz replay <script> [--format jsonl|msgpack] [--output FILE]
//	actionz lookup --base-url URL [--key q] [--params P] TEXT...
//	actionz serve [--addr :8080]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoobzio/actionz/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "actionz:", err)
		return 1
	}
	return 0
}
