package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/clickat/extbuild/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx, cmd.Metadata{Version: version, Commit: commit})
	stop()
	if err != nil {
		os.Exit(1)
	}
}
