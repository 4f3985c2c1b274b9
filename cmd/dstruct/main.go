// Command dstruct checks, validates, builds and stores structured documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reoring/dstruct/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args)
	stop()
	os.Exit(code)
}
