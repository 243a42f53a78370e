package screens

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/dutyroster/internal/models"
)

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen string
	Date   time.Time
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateWithDate(screen string, date time.Time) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, Date: date}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// FormatMinutes renders a duration as "1h30m", "45m" or "2h".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%s%dm", sign, m)
	case m == 0:
		return fmt.Sprintf("%s%dh", sign, h)
	default:
		return fmt.Sprintf("%s%dh%02dm", sign, h, m)
	}
}

// LoadBar draws used against capacity as a fixed-width bar. Overbooked members get a red bar.
func LoadBar(used, capacity, width int) string {
	if width < 1 {
		width = 1
	}
	filled := width
	if capacity > 0 && used < capacity {
		filled = used * width / capacity
	}
	if used == 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case used > capacity:
		return ErrorStyle.Render(bar)
	case capacity > 0 && used*10 >= capacity*9:
		return WarningStyle.Render(bar)
	default:
		return SuccessStyle.Render(bar)
	}
}

// DayTitle formats a date like "Mon 13 Jan 2025".
func DayTitle(date time.Time) string {
	return date.Format("Mon 02 Jan 2006")
}

func taskLabel(code, name string) string {
	if code == "" {
		return name
	}
	return fmt.Sprintf("%s %s", code, name)
}

func clockRange(start, end models.Clock) string {
	return fmt.Sprintf("%s-%s", start, end)
}
