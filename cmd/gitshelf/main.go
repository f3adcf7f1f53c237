// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/gittuf/gitshelf/internal/cmd/root"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "unexpected error: %s\n\n", fmt.Sprint(r))
			debug.PrintStack()
			fmt.Fprintln(os.Stderr, "\nPlease file a bug with the stack trace and steps to reproduce. Thanks!")

			os.Exit(1) // this is the last possible deferred function to run
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := root.New()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1) //nolint:gocritic
	}
}
