// Package tui provides a terminal user interface.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/util"
)

// App is the main TUI application.
type App struct {
	db     *storage.DB
	config *util.Config
}

// NewApp creates a new TUI application.
func NewApp(db *storage.DB, cfg *util.Config) *App {
	return &App{
		db:     db,
		config: cfg,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newModel(a.db, a.config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// model is the main bubbletea model.
type model struct {
	db        *storage.DB
	config    *util.Config
	dashboard *Dashboard
	spinner   spinner.Model
	ready     bool
	width     int
	height    int
	err       error
}

func newModel(db *storage.DB, cfg *util.Config) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		db:      db,
		config:  cfg,
		spinner: s,
	}
}

// Init initializes the model.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadData(m.db, m.config),
	)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadData(m.db, m.config)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}

	case dataMsg:
		m.ready = true
		m.dashboard = NewDashboard(msg, m.width, m.height)

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m model) View() string {
	if m.err != nil {
		return ErrorStyle.Render("Error: " + m.err.Error())
	}

	if !m.ready {
		return LoadingStyle.Render(m.spinner.View() + " Loading...")
	}

	return m.dashboard.View()
}

// Messages
type dataMsg struct {
	Data *DashboardData
}

type errMsg struct {
	err error
}

func loadData(db *storage.DB, cfg *util.Config) tea.Cmd {
	return func() tea.Msg {
		data, err := fetchDashboardData(db, cfg)
		if err != nil {
			return errMsg{err}
		}
		return dataMsg{Data: data}
	}
}

func fetchDashboardData(db *storage.DB, cfg *util.Config) (*DashboardData, error) {
	data := &DashboardData{
		Simulation:    cfg.SimulationMode,
		ConfiguredIPs: len(cfg.TerminalIPs),
	}

	statusStorage := storage.NewTermStatusStorage(db)
	if statuses, err := statusStorage.Latest(); err == nil {
		for _, st := range statuses {
			data.Terminals = append(data.Terminals, TerminalInfo{
				Host:      st.Host,
				Port:      st.Port,
				Reachable: st.Reachable,
				Latency:   st.LatencyMs,
				Checked:   st.CheckedAt.Format("15:04:05"),
			})
			if st.Reachable {
				data.ReachableCount++
			}
		}
	}

	attStorage := storage.NewAttendanceStorage(db)
	if count, err := attStorage.Count(); err == nil {
		data.AttendanceCount = count
	}

	runStorage := storage.NewRunStorage(db)
	if count, err := runStorage.Count(); err == nil {
		data.RunCount = count
	}
	if run, err := runStorage.Latest(); err == nil && run != nil {
		data.LastRun = &RunInfo{
			Finished: run.FinishedAt.Format("2006-01-02 15:04:05"),
			Pulled:   run.Pulled,
			Upserted: run.Upserted,
			Skipped:  run.Skipped,
			Detail:   run.Detail,
		}
	}

	return data, nil
}
