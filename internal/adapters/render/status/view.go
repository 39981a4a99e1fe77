package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
	// LowWaterMark flags nodes whose remaining run time is below it.
	LowWaterMark time.Duration
}

const barWidth = 24

func renderView(report fleetReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Synthelix Nodes"),
		s.header.Render(headerLine(report)),
	}

	if len(report.rows) == 0 {
		lines = append(lines, s.empty.Render("No node snapshots available. Start the bot with `synthelix run`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, row := range report.rows {
		lines = append(lines, s.section.Render(renderRow(row, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(report fleetReport) string {
	line := fmt.Sprintf("wallets: %d  running: %d  total points: %s",
		len(report.rows), report.running, domain.FormatPoints(report.totalPoints))
	if report.restartDue > 0 {
		line += fmt.Sprintf("  restart due: %d", report.restartDue)
	}
	if report.failing > 0 {
		line += fmt.Sprintf("  failing: %d", report.failing)
	}
	return line
}

func renderRow(row walletRow, opts RenderOptions, s styles) string {
	snapshot := row.snapshot
	parts := []string{
		s.account.Render(fmt.Sprintf("%s (%s)", snapshot.Label, snapshot.Address.Short())),
		nodeLine(row, s),
		s.detail.Render(fmt.Sprintf("points: %s", domain.FormatPoints(snapshot.Points.TotalPoints))),
	}

	if snapshot.Status.Running {
		parts = append(parts, s.meta.Render(fmt.Sprintf("earning: %s/h, %s unbanked",
			domain.FormatPoints(snapshot.Status.CreditsPerHour), domain.FormatPoints(snapshot.Status.EarnedCredits))))
	}

	if snapshot.LastError != "" {
		parts = append(parts, s.warning.Render("last error: "+snapshot.LastError))
	}

	parts = append(parts, updatedLine(row, opts, s))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func nodeLine(row walletRow, s styles) string {
	status := row.snapshot.Status
	state := s.stopped.Render(status.StateLabel())
	if status.Running {
		state = s.running.Render(status.StateLabel())
	}

	remaining := lipgloss.NewStyle().Foreground(interpolateColor(row.leftPercent, 0, 100)).
		Render(domain.FormatRemaining(status.SecondsRemaining) + " left")

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("node:"),
		" ",
		state,
		" ",
		renderProgressBar(row.leftPercent, barWidth, s),
		" ",
		remaining,
	)

	if row.restartDue {
		line += " " + s.warning.Render("[restart due]")
	}

	return line
}

func updatedLine(row walletRow, opts RenderOptions, s styles) string {
	updated := row.snapshot.UpdatedAt
	var line string
	switch {
	case updated.IsZero():
		line = s.meta.Render("updated: never")
	case opts.Now.IsZero():
		line = s.meta.Render("updated: " + updated.Format(time.RFC3339))
	default:
		line = s.meta.Render("updated: " + formatAgo(updated, opts.Now))
	}

	if row.stale {
		line += " " + s.warning.Render("[stale]")
	}
	return line
}

// runFraction is the share of the current run still ahead of the node. The
// elapsed part is inferred from the credit accrued at the hourly rate.
func runFraction(status domain.NodeStatus) float64 {
	if !status.Running || status.SecondsRemaining <= 0 {
		return 0
	}

	elapsed := status.ClaimedHours() * 3600
	total := elapsed + status.SecondsRemaining
	if total <= 0 {
		return 1
	}

	return status.SecondsRemaining / total
}

func renderProgressBar(leftPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(leftPercent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatAgo(at, now time.Time) string {
	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return pluralize(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return pluralize(int(elapsed.Hours()), "hour") + " ago"
	default:
		return pluralize(int(elapsed.Hours()/24), "day") + " ago"
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
