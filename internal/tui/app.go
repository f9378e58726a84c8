package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/shell"
)

const refreshInterval = time.Second

type tickMsg time.Time

// refreshMsg carries one poll of the daemon.
type refreshMsg struct {
	status *ipc.StatusData
	spaces []shell.SpaceInfo
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func fetch(d Daemon) tea.Cmd {
	return func() tea.Msg {
		if d == nil {
			return refreshMsg{}
		}
		st, err := d.GetStatus()
		if err != nil {
			return refreshMsg{err: err}
		}
		spaces, err := d.ListSpaces()
		return refreshMsg{status: st, spaces: spaces, err: err}
	}
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	daemon     Daemon

	activeTab Tab

	spacesTab   SpacesTab
	settingsTab SettingsTab

	originalConfig *config.Config
	saveOverlay    SaveOverlay

	status   *ipc.StatusData
	fetchErr error

	width  int
	height int
}

func newModel(configPath string, daemon Daemon) model {
	m := model{
		configPath: configPath,
		daemon:     daemon,
		activeTab:  TabStatus,
		spacesTab:  NewSpacesTab(),
	}

	m.result, m.loadErr = config.LoadFromPath(configPath)

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
		m.originalConfig = cloneConfig(cfg)
	}
	m.settingsTab = NewSettingsTab(cfg)
	return m
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetch(m.daemon), tick())
}

func (m model) resize(msg tea.WindowSizeMsg) model {
	m.width = msg.Width
	m.height = msg.Height
	sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.spacesTab, _ = m.spacesTab.Update(sub)
	m.settingsTab, _ = m.settingsTab.Update(sub)
	return m
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Polling continues regardless of which view has focus.
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(fetch(m.daemon), tick())
	case refreshMsg:
		m.fetchErr = msg.err
		if msg.status != nil || msg.err != nil {
			m.status = msg.status
		}
		if msg.status != nil {
			m.spacesTab.SetSpaces(msg.spaces)
		}
		return m, nil
	case tea.WindowSizeMsg:
		return m.resize(msg), nil
	}

	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.configPath, m.result.Config, m.daemon, m.status != nil)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.result != nil && m.result.Config != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	// The settings form consumes keys while editing; only ctrl+c escapes.
	if m.activeTab == TabSettings && m.settingsTab.editing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.settingsTab, cmd = m.settingsTab.Update(msg)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabStatus
			return m, nil
		case "2":
			m.activeTab = TabSpaces
			return m, nil
		case "3":
			m.activeTab = TabSettings
			return m, nil
		case "r":
			return m, fetch(m.daemon)
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabSpaces:
		m.spacesTab, cmd = m.spacesTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.activeTab == TabStatus:
		content = renderStatus(m.status, m.fetchErr, m.width, contentHeight)
	case m.activeTab == TabSpaces:
		content = m.spacesTab.View()
	case m.activeTab == TabSettings:
		if m.loadErr != nil && m.result == nil {
			content = renderCentered("Config error: "+m.loadErr.Error(), m.width, contentHeight)
		} else {
			content = m.settingsTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
