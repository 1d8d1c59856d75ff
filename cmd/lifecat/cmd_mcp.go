package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"lifecat/internal/mcptools"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.svc.Initialize(cmd.Context()); err != nil {
				return err
			}
			return server.ServeStdio(mcptools.NewServer(a.svc, a.rn, version))
		},
	}
}
