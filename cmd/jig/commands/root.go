// Package commands implements the jig command line.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/jig/internal/app"
	"go.trai.ch/jig/internal/build"
)

// Application is the part of the app layer the commands drive.
type Application interface {
	Serve(ctx context.Context, opts app.ServeOptions) error
	Build(ctx context.Context, opts app.BuildOptions) error
}

// CLI is the jig command tree bound to an Application.
type CLI struct {
	app  Application
	root *cobra.Command

	// env is shared by every command that builds the site.
	env string
}

// New builds the command tree for a.
func New(a Application) *CLI {
	c := &CLI{app: a}

	c.root = &cobra.Command{
		Use:           "jig",
		Short:         "Build, watch and live-reload a Jigsaw site",
		Long:          "jig runs Jigsaw builds one at a time as the project changes and tells connected browsers to reload.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	c.root.SetVersionTemplate("{{.Name}} " + versionSuffix() + "\n")
	c.root.PersistentFlags().StringVarP(&c.env, "env", "e", "",
		"Jigsaw environment to build (default from jig.yaml, else local)")

	c.root.AddCommand(c.newServeCmd(), c.newBuildCmd(), c.newVersionCmd())
	return c
}

// Execute runs the command selected by the arguments under ctx.
func (c *CLI) Execute(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// SetArgs replaces the process arguments.
func (c *CLI) SetArgs(args []string) {
	c.root.SetArgs(args)
}

// SetOutput redirects command output and errors.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.root.SetOut(out)
	c.root.SetErr(errOut)
}

// versionSuffix is the text following the program name in version output.
func versionSuffix() string {
	return fmt.Sprintf("version %s (commit: %s, date: %s)", build.Version, build.Commit, build.Date)
}
