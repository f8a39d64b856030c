package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skyaboveme/yourgency/internal/models"
)

var (
	colorHot   = lipgloss.Color("#e53935")
	colorWarm  = lipgloss.Color("#FFC107")
	colorCold  = lipgloss.Color("#2196F3")
	colorMuted = lipgloss.Color("#8a94a6")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	columnStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorHot)
)

func tierStyle(t models.LeadTier) lipgloss.Style {
	switch t {
	case models.TierHot:
		return lipgloss.NewStyle().Bold(true).Foreground(colorHot)
	case models.TierWarm:
		return lipgloss.NewStyle().Foreground(colorWarm)
	default:
		return lipgloss.NewStyle().Foreground(colorCold)
	}
}

// renderBoard prints one block per column. DISCOVERY and closed deals are
// listed after the board columns when present.
func renderBoard(deals []models.Deal) string {
	byStage := map[models.Stage][]models.Deal{}
	for _, d := range deals {
		byStage[d.Stage] = append(byStage[d.Stage], d)
	}

	columns := append([]models.Stage{}, models.BoardStages...)
	for _, st := range []models.Stage{models.StageDiscovery, models.StageClosedWon, models.StageClosedLost} {
		if len(byStage[st]) > 0 {
			columns = append(columns, st)
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Pipeline (%d deals)", len(deals))))
	sb.WriteString("\n")
	for _, st := range columns {
		list := byStage[st]
		sort.SliceStable(list, func(i, j int) bool { return list[i].CompanyName < list[j].CompanyName })

		sb.WriteString("\n")
		sb.WriteString(columnStyle.Render(fmt.Sprintf("%s (%d)", st.Label(), len(list))))
		sb.WriteString("\n")
		if len(list) == 0 {
			sb.WriteString(mutedStyle.Render("  -"))
			sb.WriteString("\n")
			continue
		}
		for _, d := range list {
			sb.WriteString("  ")
			sb.WriteString(renderDealLine(d))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func renderDealLine(d models.Deal) string {
	line := fmt.Sprintf("%s  %s", mutedStyle.Render(d.ID), d.CompanyName)
	if d.ContactName != "" {
		line += mutedStyle.Render(" · " + d.ContactName)
	}
	if d.Score != nil {
		line += "  " + renderScore(*d.Score)
	}
	return line
}

func renderScore(s models.LeadScore) string {
	return tierStyle(s.Tier()).Render(fmt.Sprintf("%.0f %s", s.Composite, s.Tier()))
}

func renderScoreCard(company string, s models.LeadScore) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(company))
	sb.WriteString("  ")
	sb.WriteString(renderScore(s))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  fit %.0f · need %.0f · timing %.0f · readiness %.0f\n", s.Fit, s.Need, s.Timing, s.Readiness)
	if s.Rationale != "" {
		sb.WriteString(mutedStyle.Render("  " + s.Rationale))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderBrief(b models.Brief) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Morning brief"))
	sb.WriteString("\n")
	sb.WriteString(b.Summary)
	sb.WriteString("\n")
	list := func(title string, items []string, style lipgloss.Style) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n")
		sb.WriteString(columnStyle.Render(title))
		sb.WriteString("\n")
		for _, it := range items {
			sb.WriteString(style.Render("  • " + it))
			sb.WriteString("\n")
		}
	}
	list("Action items", b.ActionItems, lipgloss.NewStyle())
	list("Risks", b.Risks, lipgloss.NewStyle().Foreground(colorWarm))
	return sb.String()
}
