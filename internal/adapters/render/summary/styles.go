package summary

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	detail     lipgloss.Style
	section    lipgloss.Style
	success    lipgloss.Style
	caseNumber lipgloss.Style
	reason     lipgloss.Style
	downloaded lipgloss.Style
	notFound   lipgloss.Style
	rejected   lipgloss.Style
	failed     lipgloss.Style
	empty      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:    lipgloss.NewStyle().MarginTop(1),
		success:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		caseNumber: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		reason:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		downloaded: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		notFound:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		rejected:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		failed:     lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
		empty:      lipgloss.NewStyle().Faint(true),
	}
}
