package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var body string
	if m.connected {
		body = m.list.View()
	} else {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.listHeight()).
			Align(lipgloss.Center, lipgloss.Center).
			Render(mutedStyle.Render("daemon not running"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatusBar(),
		body,
		m.renderHelpBar(),
	)
}

func (m model) renderStatusBar() string {
	var status string
	if m.connected && m.status != nil {
		parts := []string{
			okStyle.Render("●") + " connected",
			"display:" + m.status.Display,
			fmt.Sprintf("frames:%d", m.status.FrameCount),
		}
		if m.status.Animations {
			parts = append(parts, "animations:on")
		}
		status = strings.Join(parts, "  ")
	} else {
		status = mutedStyle.Render("●") + " daemon not running"
	}
	return barStyle.Width(m.width).Render(status)
}

func (m model) renderHelpBar() string {
	left := ""
	if m.statusText != "" {
		if m.statusErr {
			left = errStyle.Render(m.statusText)
		} else {
			left = okStyle.Render(m.statusText)
		}
	}
	right := "c:close  m:maximize  n:minimize  r:refresh  q:quit"

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return helpStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
