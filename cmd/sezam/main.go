// sezam finds the topics of French legal texts from curated trigger words.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/sezam/cmd/sezam/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
