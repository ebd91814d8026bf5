package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/selfhost-kit/stackctl/internal/stacks"
	"github.com/selfhost-kit/stackctl/internal/workflow"
)

var (
	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	summaryTitle = lipgloss.NewStyle().Bold(true)
	summaryDim   = lipgloss.NewStyle().Faint(true)
)

// printSummary renders the post-install report: where the stack lives,
// which ports it exposes and how to manage it from here.
func printSummary(w io.Writer, stack *stacks.Stack, session *workflow.Session) {
	var b strings.Builder

	b.WriteString(summaryTitle.Render(fmt.Sprintf("%s installed", stack.Name)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Work directory: %s\n", session.WorkDir)

	if stack.AccessURL != nil {
		if url := stack.AccessURL(session.Values); url != "" {
			fmt.Fprintf(&b, "Access URL:     %s\n", url)
		}
	}

	if len(stack.Ports) > 0 {
		b.WriteString("\nPorts:\n")
		for _, p := range stack.Ports {
			fmt.Fprintf(&b, "  %-6s %s\n", p.Resolve(session.Values), p.Purpose)
		}
	}

	b.WriteString("\n")
	b.WriteString(summaryDim.Render(fmt.Sprintf("logs:    cd %s && docker compose logs -f", session.WorkDir)))
	b.WriteString("\n")
	b.WriteString(summaryDim.Render(fmt.Sprintf("remove:  stackctl destroy %s", stack.Name)))

	fmt.Fprintln(w, summaryBox.Render(b.String()))
}
