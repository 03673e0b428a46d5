package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/jig/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the site once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), app.BuildOptions{Env: c.env})
		},
	}
}
