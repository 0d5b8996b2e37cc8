package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/vadimtrunov/cinegrid/internal/mcp"
)

// newMCPServeCmd returns the hidden "mcp-serve" subcommand.
// It serves the catalog and wishlist tools over stdin/stdout so an MCP
// client can launch cinegrid as a tool server.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Start MCP server over stdio (internal)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := prepare()
			if err != nil {
				return err
			}

			deps := mcpserver.Deps{Wishlist: svc.wishlist}

			// Without a key the catalog tools answer with an error result.
			if cat, err := svc.requireCatalog(cmd.Context()); err == nil {
				deps.Catalog = cat
			} else {
				svc.logger.Warn("catalog tools disabled", "error", err)
			}

			srv := mcpserver.NewServer(deps, version, svc.logger)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
