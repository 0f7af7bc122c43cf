package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/wolfman30/prospect-pipeline/internal/prospects"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	todayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func statusStyle(s prospects.Status) lipgloss.Style {
	switch s {
	case prospects.StatusClient, prospects.StatusCoachProspect, prospects.StatusCoach:
		return successStyle
	case prospects.StatusNotInterested:
		return dimStyle
	default:
		return lipgloss.NewStyle()
	}
}

func renderView(w io.Writer, view prospects.View) {
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "No prospects match. Add one with 'pipelinectl add <name>'")
		renderStats(w, view.Stats)
		return
	}

	// Pad with tabwriter first, then colour whole lines so escapes never skew widths.
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPRIORITY\tNEXT\tLAST CONTACT")
	for _, r := range view.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.Status, r.Priority, nextColumn(r), lastContactColumn(r))
	}
	_ = tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	fmt.Fprintln(w, headerStyle.Render(lines[0]))
	for i, line := range lines[1:] {
		row := view.Rows[i]
		switch {
		case row.IsOverdue:
			line = overdueStyle.Render(line)
		case row.IsToday:
			line = todayStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
	renderStats(w, view.Stats)
}

func renderStats(w io.Writer, stats prospects.Stats) {
	parts := make([]string, 0, len(prospects.AllStatuses))
	for _, s := range prospects.AllStatuses {
		if n := stats.ByStatus[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", s, n))
		}
	}
	fmt.Fprintf(w, "%s %d", dimStyle.Render("Total:"), stats.Total)
	if len(parts) > 0 {
		fmt.Fprintf(w, "  %s", dimStyle.Render("("+strings.Join(parts, ", ")+")"))
	}
	fmt.Fprintln(w)
	if stats.Overdue > 0 {
		fmt.Fprintln(w, overdueStyle.Render(fmt.Sprintf("⚠ %d overdue", stats.Overdue)))
	}
	if stats.DueToday > 0 {
		fmt.Fprintln(w, todayStyle.Render(fmt.Sprintf("%d due today", stats.DueToday)))
	}
}

func renderTouches(w io.Writer, r *prospects.TouchReport) {
	progress := fmt.Sprintf("%d / %d touches on %s", r.Touches, r.Goal, r.Date)
	if r.Touches >= r.Goal {
		progress = successStyle.Render(progress + " ✓")
	}
	fmt.Fprintln(w, headerStyle.Render(progress))
	if r.Streak > 0 {
		fmt.Fprintf(w, "Streak: %d day(s)\n", r.Streak)
	}
	for _, ct := range prospects.ContactTypes {
		if n := r.ByType[ct]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", ct, n)
		}
	}
	for _, p := range r.ByProspect {
		fmt.Fprintf(w, "  %s %s\n", p.Name, dimStyle.Render(fmt.Sprintf("×%d", p.Count)))
	}
	if len(r.History) > 0 {
		days := make([]string, len(r.History))
		for i, h := range r.History {
			days[i] = fmt.Sprintf("%s:%d", h.Date, h.Touches)
		}
		fmt.Fprintln(w, dimStyle.Render("History "+strings.Join(days, " ")))
	}
}

func nextColumn(r prospects.Row) string {
	if r.NextAction.IsZero() {
		return "-"
	}
	if r.NextActionType == prospects.ActionNone {
		return r.NextAction.String()
	}
	return fmt.Sprintf("%s %s", r.NextAction, r.NextActionType)
}

func lastContactColumn(r prospects.Row) string {
	if r.DaysSinceContact == nil {
		return "never"
	}
	return fmt.Sprintf("%s (%dd)", r.LastContact, *r.DaysSinceContact)
}
