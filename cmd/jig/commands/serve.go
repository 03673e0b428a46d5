package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/jig/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	var opts app.ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the site, then rebuild and reload browsers on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Env = c.env
			return c.app.Serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "Dev server address (default from jig.yaml, else localhost:5173)")
	cmd.Flags().BoolVar(&opts.JSONLogs, "json", false, "Write logs as JSON")
	return cmd
}
