package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selfhost-kit/stackctl/internal/stacks"
)

// newListCommand creates the "list" subcommand that prints the stack catalog.
func newListCommand(_ *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installable stacks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, s := range stacks.All() {
				fmt.Fprintf(out, "%-16s %s\n", s.Name, s.Summary)
			}
			return nil
		},
	}
}
