// Author @gajzzs
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gajzzs/usbwrite/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// A second signal falls through to the default handler.
		<-ctx.Done()
		stop()
	}()

	err := app.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, app.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
