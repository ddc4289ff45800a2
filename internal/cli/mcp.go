package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/internal/mcp"
	"github.com/matzehuels/flowcanvas/pkg/metrics"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// mcpCommand creates the mcp command.
func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [graph]",
		Short: "Serve the canvas as Model Context Protocol tools over stdio",
		Long: `Run an MCP server on stdin and stdout. Clients can list routes, move
blocks, drag joints, and render the canvas as SVG. Logs go to stderr so they
never interleave with protocol messages.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			metrics.Install()
			defer observability.Reset()

			cv, err := loadCanvas(ctx, graphArg(args))
			if err != nil {
				return err
			}
			loggerFromContext(ctx).Info("serving MCP tools on stdio")
			return mcp.Serve(ctx, cv, loggerFromContext(ctx))
		},
	}
}
