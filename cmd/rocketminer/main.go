// Command rocketminer runs ranking queries over a space launch catalog.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/orbitlab/rocketminer/internal/cli"
	"github.com/orbitlab/rocketminer/internal/mining"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		if errors.Is(err, mining.ErrInvalidArgument) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
