// Command gftool prepares, inspects and runs galfit fits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/astrokit/gftool/internal/commands"
	"github.com/astrokit/gftool/internal/errors"
)

// version and commit are set at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	app := commands.NewApp(fmt.Sprintf("%s (%s)", version, commit))

	// Cancel on SIGINT/SIGTERM so a batch stops between fits and a running
	// galfit is killed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if app.Log != nil {
			app.Log.Warn("Received interrupt, stopping")
		}
		cancel()
	}()

	err := app.RunContext(ctx, os.Args)
	if err == nil {
		return commands.ExitOK
	}
	if app.Cfg.Verbose {
		fmt.Fprintf(os.Stderr, "gftool: %s\n", errors.ErrorStack(err))
	} else {
		fmt.Fprintf(os.Stderr, "gftool: %v\n", err)
	}
	return errors.ExitCode(err, commands.ExitFailure)
}
