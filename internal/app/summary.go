package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vk/taskflow/internal/node"
	"github.com/vk/taskflow/internal/scheduler"
	"github.com/vk/taskflow/internal/work"
)

// renderSummary writes a per-task table for rep. Colours are only emitted
// when w is a terminal.
func renderSummary(w io.Writer, rep *scheduler.Report) error {
	r := lipgloss.NewRenderer(w)

	nameWidth := len("TASK")
	for _, n := range rep.Nodes {
		nameWidth = max(nameWidth, len(n.Name))
	}
	nameCol := r.NewStyle().Width(nameWidth + 2)
	outcomeCol := r.NewStyle().Width(11)
	durationCol := r.NewStyle().Width(10)
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim := r.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	fmt.Fprintln(&b, title.Render(fmt.Sprintf("Run %s (%s) finished in %s", rep.RunID, rep.Policy, rep.Elapsed.Round(time.Millisecond))))
	fmt.Fprintln(&b, header.Render(nameCol.Render("TASK")+outcomeCol.Render("OUTCOME")+durationCol.Render("DURATION")+"ERROR"))

	for _, n := range rep.Nodes {
		outcome, duration, errText := "stalled", "-", ""
		if n.State == node.Completed {
			outcome = n.Outcome.String()
			duration = n.Duration().Round(time.Millisecond).String()
			if n.Err != nil {
				errText = n.Err.Error()
			}
		}
		fmt.Fprintln(&b,
			nameCol.Render(n.Name)+
				outcomeStyle(r, n).Inherit(outcomeCol).Render(outcome)+
				durationCol.Render(duration)+
				dim.Render(errText))
	}

	fmt.Fprintf(&b, "%d dispatched: %d succeeded, %d failed, %d cancelled, %d skipped, %d stalled\n",
		rep.Dispatched,
		rep.Count(work.Success),
		rep.Count(work.Failed),
		rep.Count(work.Cancelled),
		rep.Count(work.Skipped),
		len(rep.Stalled),
	)

	_, err := io.WriteString(w, b.String())
	return err
}

func outcomeStyle(r *lipgloss.Renderer, n scheduler.NodeReport) lipgloss.Style {
	s := r.NewStyle()
	if n.State != node.Completed {
		return s.Foreground(lipgloss.Color("5"))
	}
	switch n.Outcome {
	case work.Success:
		return s.Foreground(lipgloss.Color("2"))
	case work.Skipped, work.Cancelled:
		return s.Foreground(lipgloss.Color("3"))
	default:
		return s.Foreground(lipgloss.Color("1"))
	}
}
