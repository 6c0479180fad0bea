package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dslh/mcp-nexus/internal/proxy"
	"github.com/dslh/mcp-nexus/internal/tools"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gateway version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (client %s %s)\n",
				tools.ServerName, tools.ServerVersion, proxy.ClientName, proxy.ClientVersion)
		},
	}
}
