// Package shell runs the Jigsaw site build as a child process.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports"
	"go.trai.ch/jig/internal/ui/output"
	"go.trai.ch/zerr"
)

const tracerName = "go.trai.ch/jig/internal/adapters/shell"

// Builder implements ports.Builder using os/exec.
// Output is passed through to the configured writers; when stdout is a terminal the
// build runs under a PTY so its colors survive.
type Builder struct {
	logger ports.Logger
	stdout io.Writer
	stderr io.Writer
	usePTY bool
}

// NewBuilder creates a Builder writing to the process stdout and stderr.
func NewBuilder(logger ports.Logger) *Builder {
	b := &Builder{logger: logger}
	b.SetOutput(os.Stdout, os.Stderr)
	return b
}

// SetOutput redirects build output. A PTY is used only when stdout is a terminal.
func (b *Builder) SetOutput(stdout, stderr io.Writer) {
	b.stdout = stdout
	b.stderr = stderr
	b.usePTY = output.IsTerminal(stdout)
}

// Build runs cmd and waits for it to exit.
func (b *Builder) Build(ctx context.Context, cmd *domain.BuildCommand) error {
	if cmd == nil || len(cmd.Args) == 0 {
		return domain.ErrEmptyBuildCommand
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, domain.BuildSpanName,
		trace.WithAttributes(
			attribute.String("jigsaw.command", strings.Join(cmd.Args, " ")),
			attribute.String("jigsaw.dir", cmd.Dir),
		),
	)
	defer span.End()

	proc := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...) //nolint:gosec // user configured command
	proc.Dir = cmd.Dir
	proc.Env = resolveEnvironment(os.Environ(), cmd.Env)

	var err error
	if b.usePTY {
		err = b.runPTY(proc)
	} else {
		proc.Stdout = b.stdout
		proc.Stderr = b.stderr
		err = proc.Run()
	}
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	span.SetAttributes(attribute.Int("jigsaw.exit_code", exitCode))
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)

	b.logger.Warn("Jigsaw build failed, see above.")
	return zerr.With(zerr.Wrap(err, domain.ErrBuildFailed.Error()), "exit_code", exitCode)
}

func (b *Builder) runPTY(proc *exec.Cmd) error {
	ptmx, err := pty.Start(proc)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}
	defer func() { _ = ptmx.Close() }()

	if f, ok := b.stdout.(*os.File); ok {
		_ = pty.InheritSize(f, ptmx)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// The PTY merges stdout and stderr. Reads fail with EIO once the child exits.
		_, _ = io.Copy(b.stdout, ptmx)
	}()

	err = proc.Wait()
	<-ioDone
	return err
}

// resolveEnvironment overlays extra "KEY=VALUE" entries on the inherited environment.
func resolveEnvironment(sysEnv, extra []string) []string {
	if len(extra) == 0 {
		return sysEnv
	}

	overrides := make(map[string]struct{}, len(extra))
	for _, entry := range extra {
		if k, _, ok := strings.Cut(entry, "="); ok {
			overrides[k] = struct{}{}
		}
	}

	result := make([]string, 0, len(sysEnv)+len(extra))
	for _, entry := range sysEnv {
		k, _, _ := strings.Cut(entry, "=")
		if _, replaced := overrides[k]; !replaced {
			result = append(result, entry)
		}
	}
	return append(result, extra...)
}
