package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		tui.ShowError(os.Stderr, "%s", api.UserMessage(err))
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, tui.Muted(hint))
		}
		os.Exit(1)
	}
}
