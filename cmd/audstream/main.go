// SPDX-License-Identifier: EPL-2.0

// Command audstream inspects, seeks and decodes MP3 files.
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
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "audstream:", err)
		os.Exit(1)
	}
}
