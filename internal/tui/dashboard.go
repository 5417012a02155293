package tui

import (
	"fmt"
	"strings"
)

// DashboardData holds data for the dashboard view.
type DashboardData struct {
	Simulation      bool
	ConfiguredIPs   int
	ReachableCount  int
	AttendanceCount int
	RunCount        int
	LastRun         *RunInfo
	Terminals       []TerminalInfo
}

// TerminalInfo represents terminal status for display.
type TerminalInfo struct {
	Host      string
	Port      int
	Reachable bool
	Latency   float64
	Checked   string
}

// RunInfo represents the last sync run for display.
type RunInfo struct {
	Finished string
	Pulled   int
	Upserted int
	Skipped  int
	Detail   string
}

// Dashboard is the main dashboard view.
type Dashboard struct {
	data   *DashboardData
	width  int
	height int
}

// NewDashboard creates a new dashboard.
func NewDashboard(msg dataMsg, width, height int) *Dashboard {
	return &Dashboard{
		data:   msg.Data,
		width:  width,
		height: height,
	}
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var sb strings.Builder

	// Header
	title := "FingerPulse Dashboard"
	if d.data.Simulation {
		title += " [SIMULATION]"
	}
	header := HeaderStyle.Width(d.width).Render(title)
	sb.WriteString(header)
	sb.WriteString("\n\n")

	sb.WriteString(d.renderSyncSection())
	sb.WriteString("\n")

	sb.WriteString(d.renderStatsSection())
	sb.WriteString("\n")

	sb.WriteString(d.renderTerminalsSection())
	sb.WriteString("\n")

	help := HelpStyle.Render("Press 'r' to refresh • 'q' to quit")
	sb.WriteString(help)

	return sb.String()
}

func (d *Dashboard) sectionWidth() int {
	w := d.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (d *Dashboard) renderSyncSection() string {
	var content string
	if d.data.LastRun == nil {
		content = DimStyle.Render("No sync runs recorded yet")
	} else {
		run := d.data.LastRun
		content = fmt.Sprintf(
			"%s %s\n%s %s\n%s %s",
			LabelStyle.Render("Finished:"),
			ValueStyle.Render(run.Finished),
			LabelStyle.Render("Records:"),
			ValueStyle.Render(fmt.Sprintf("%d pulled, %d upserted, %d skipped",
				run.Pulled, run.Upserted, run.Skipped)),
			LabelStyle.Render("Detail:"),
			ValueStyle.Render(orDash(run.Detail)),
		)
	}

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("⟳ Last Sync") + "\n" + content)
}

func (d *Dashboard) renderStatsSection() string {
	content := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s",
		LabelStyle.Render("Terminals:"),
		ValueStyle.Render(fmt.Sprintf("%d/%d reachable", d.data.ReachableCount, d.data.ConfiguredIPs)),
		LabelStyle.Render("Attendance:"),
		ValueStyle.Render(fmt.Sprintf("%d rows", d.data.AttendanceCount)),
		LabelStyle.Render("Sync Runs:"),
		ValueStyle.Render(fmt.Sprintf("%d", d.data.RunCount)),
	)

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("📊 Statistics") + "\n" + content)
}

func (d *Dashboard) renderTerminalsSection() string {
	if len(d.data.Terminals) == 0 {
		content := DimStyle.Render("No status samples yet")
		return SectionStyle.Width(d.sectionWidth()).Render(
			SectionTitleStyle.Render("🖥 Terminals") + "\n" + content)
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("%-16s %-6s %-12s %-10s %s", "Host", "Port", "Status", "Latency", "Checked"))
	rows = append(rows, strings.Repeat("─", 56))

	maxRows := 10
	if len(d.data.Terminals) < maxRows {
		maxRows = len(d.data.Terminals)
	}

	for i := 0; i < maxRows; i++ {
		t := d.data.Terminals[i]
		status := RenderStatus(t.Reachable, "up", "down")
		rows = append(rows, fmt.Sprintf("%-16s %-6d %-12s %-10s %s",
			t.Host, t.Port, status, fmt.Sprintf("%.1f ms", t.Latency), t.Checked))
	}

	if len(d.data.Terminals) > maxRows {
		rows = append(rows, DimStyle.Render(fmt.Sprintf("... and %d more", len(d.data.Terminals)-maxRows)))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("🖥 Terminals") + "\n" + content)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
