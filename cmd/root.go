// Package cmd assembles the nutriboard command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/nutriboard/internal/cli/board"
	"github.com/thenoetrevino/nutriboard/internal/cli/client"
	"github.com/thenoetrevino/nutriboard/internal/cli/column"
)

// NewRootCmd builds the nutriboard root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nutriboard",
		Short: "nutriboard - client board for nutrition coaching",
		Long: `nutriboard keeps a board of client columns in step with each
client's program status. Moving a client on the board updates its status,
and any drift between the two is repaired whenever the board is loaded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(board.BoardCmd())
	rootCmd.AddCommand(column.ColumnCmd())
	rootCmd.AddCommand(client.ClientCmd())

	return rootCmd
}
