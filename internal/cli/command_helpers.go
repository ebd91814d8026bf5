package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// cmdTimeout derives a bounded context from the command's context.
func cmdTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), d)
}
