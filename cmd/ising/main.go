// Command ising equilibrates 2D Ising lattices and sweeps them across a
// temperature range.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"ising/internal/sims/ising"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ising:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps rejected configuration to 2 and every other failure to 1.
func exitCode(err error) int {
	if errors.Is(err, ising.ErrInvalidConfig) {
		return 2
	}
	return 1
}
