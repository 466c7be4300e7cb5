// Command styleaudit audits documents against a directory of style guides.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/styleaudit/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = ""

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(envOverrides())
	if err != nil {
		return err
	}
	defer a.Close()

	cli.SetVersion(version)
	cli.SetServices(a.services)
	return cli.Execute(ctx)
}
