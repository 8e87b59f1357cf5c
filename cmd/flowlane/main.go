package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/flowlane/internal/cli"
	ferrors "github.com/matzehuels/flowlane/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	err := c.RootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(130) // SIGINT
	}
	fmt.Fprintf(os.Stderr, "flowlane: %s\n", ferrors.UserMessage(err))
	os.Exit(exitCode(err))
}

// exitCode is 2 for bad input, 1 otherwise.
func exitCode(err error) int {
	if ferrors.IsInvalid(err) {
		return 2
	}
	return 1
}
