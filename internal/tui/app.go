package tui

import (
	"database/sql"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/dutyroster/internal/config"
	"github.com/emilianohg/dutyroster/internal/tui/screens"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenAssignments
)

type App struct {
	db            *sql.DB
	cfg           *config.Config
	date          time.Time
	currentScreen Screen
	width         int
	height        int

	// Screen models
	dashboard   *screens.Dashboard
	assignments *screens.Assignments
}

func NewApp(db *sql.DB, cfg *config.Config, date time.Time) *App {
	return &App{
		db:            db,
		cfg:           cfg,
		date:          date,
		currentScreen: ScreenDashboard,
	}
}

func (a *App) Init() tea.Cmd {
	a.dashboard = screens.NewDashboard(a.db, a.cfg, a.date)
	a.assignments = screens.NewAssignments(a.db)

	return a.dashboard.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenDashboard && !a.dashboard.Editing() {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.assignments.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	// Update current screen
	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenDashboard:
		cmd = a.dashboard.Update(msg)
	case ScreenAssignments:
		cmd = a.assignments.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "dashboard":
		a.currentScreen = ScreenDashboard
		return a, a.dashboard.Init()
	case "assignments":
		a.currentScreen = ScreenAssignments
		date := msg.Date
		if date.IsZero() {
			date = a.dashboard.Date()
		}
		a.assignments.SetDate(date)
		return a, a.assignments.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenAssignments:
		content = a.assignments.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

// Run starts the TUI on date.
func Run(db *sql.DB, cfg *config.Config, date time.Time) error {
	app := NewApp(db, cfg, date)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
