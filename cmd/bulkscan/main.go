// Command bulkscan runs bulk license re-scans against one upload, either as a
// one-shot scheduler job (run) or behind the HTTP API (serve)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "bulkscan:", err)
		os.Exit(exitCode(err))
	}
}
