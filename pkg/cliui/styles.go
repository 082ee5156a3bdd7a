// Package cliui holds the terminal styles and small rendering helpers shared
// by the uistream CLI commands.
package cliui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const (
	green  = lipgloss.Color("82")
	red    = lipgloss.Color("196")
	blue   = lipgloss.Color("39")
	grey   = lipgloss.Color("245")
	dim    = lipgloss.Color("241")
	bright = lipgloss.Color("252")
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(green).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(red).Render("✗")

	KeyStyle       = lipgloss.NewStyle().Foreground(grey)
	ValueStyle     = lipgloss.NewStyle().Foreground(bright)
	NameStyle      = lipgloss.NewStyle().Foreground(green).Bold(true)
	HashStyle      = lipgloss.NewStyle().Foreground(blue)
	DimStyle       = lipgloss.NewStyle().Foreground(dim)
	HeaderStyle    = lipgloss.NewStyle().Foreground(bright).Bold(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(red)
	ReasoningStyle = lipgloss.NewStyle().Foreground(dim).Italic(true)
	ToolStyle      = lipgloss.NewStyle().Foreground(blue).Bold(true)

	spinnerStyle = lipgloss.NewStyle().Foreground(green)
	elapsedStyle = lipgloss.NewStyle().Foreground(grey)
)

// Tool call states shown by ToolLine.
const (
	ToolRunning = "running"
	ToolDone    = "done"
	ToolFailed  = "failed"
)

// ToolLine renders a one-line summary of a tool call.
func ToolLine(name, state, detail string) string {
	mark := spinnerStyle.Render(spinnerFrames[0])
	switch state {
	case ToolDone:
		mark = SuccessMark
	case ToolFailed:
		mark = FailMark
	}

	line := fmt.Sprintf("  %s %s", mark, ToolStyle.Render(name))
	if detail != "" {
		line += " " + DimStyle.Render(detail)
	}
	return line
}
