package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dendrascience/dendra-journal/version"
)

// NewVersionCmd creates and returns the version subcommand for the djournal
// CLI. It prints the full version information block.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Long: `Print the djournal version together with the git commit and build date,
whether injected at build time or detected from Go build info.`,
		Run: func(cmd *cobra.Command, args []string) {
			version.PrintVersion("djournal")
		},
	}
}
