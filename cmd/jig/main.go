// Package main is the entry point for jig.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/jig/cmd/jig/commands"
	"go.trai.ch/jig/internal/app"
	"go.trai.ch/jig/internal/core/domain"
	_ "go.trai.ch/jig/internal/wiring"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// ComponentProvider resolves the application components and a cleanup func.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

// resolveGraph builds the components from the registered graft nodes.
func resolveGraph(ctx context.Context) (*app.Components, func(), error) {
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	return components, func() {}, err
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, resolveGraph))
}

func run(parent context.Context, args []string, stderr io.Writer, provide ComponentProvider) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, cleanup, err := provide(ctx)
	if err != nil {
		// No logger without components.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer cleanup()

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	return exitCode(cli.Execute(ctx), components.Logger)
}

// exitCode maps the command result to a process status, logging errors
// that were not already reported.
func exitCode(err error, log interface{ Error(error) }) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrBuildExecutionFailed):
		return exitFailure
	default:
		log.Error(err)
		return exitFailure
	}
}
