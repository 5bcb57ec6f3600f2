// Command orchid runs commands under the orchid wrappers: timing, chat
// notifications, error handling, stdin batching and memoized batch output.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/orchid/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCmd(version).ExecuteContext(ctx)
	return cli.ExitCode(err, os.Stderr)
}
