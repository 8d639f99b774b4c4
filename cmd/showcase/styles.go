package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app, title, description         lipgloss.Style
	tabActive, tabInactive, tabsRow lipgloss.Style
	frame, frameFullscreen          lipgloss.Style
	caption, source, errorText      lipgloss.Style
	dotActive, dotIdle, dotFailed   lipgloss.Style
	statusBar, statusOn, statusOff  lipgloss.Style
	help                            lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	accent := lipgloss.Color("111")
	muted := lipgloss.Color("245")
	alert := lipgloss.Color("204")

	return styles{
		app:             base.Padding(1, 2),
		title:           base.Copy().Bold(true).Foreground(accent),
		description:     base.Copy().Foreground(muted).Width(72),
		tabActive:       base.Copy().Bold(true).Underline(true).Padding(0, 1),
		tabInactive:     base.Copy().Foreground(muted).Padding(0, 1),
		tabsRow:         base.MarginBottom(1),
		frame:           base.Border(lipgloss.RoundedBorder()).Padding(1, 2).Width(60),
		frameFullscreen: base.Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(2, 4).Width(72),
		caption:         base.Copy().Bold(true),
		source:          base.Copy().Foreground(muted),
		errorText:       base.Copy().Foreground(alert),
		dotActive:       base.Copy().Foreground(accent),
		dotIdle:         base.Copy().Foreground(muted),
		dotFailed:       base.Copy().Foreground(alert),
		statusBar:       base.MarginTop(1),
		statusOn:        base.Copy().Bold(true).Padding(0, 1),
		statusOff:       base.Copy().Faint(true).Padding(0, 1),
		help:            base.Copy().Faint(true).MarginTop(1),
	}
}
