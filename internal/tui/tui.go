package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/shell"
)

// Daemon is the part of the IPC client the dashboard polls.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListSpaces() ([]shell.SpaceInfo, error)
	Reload() error
}

// Run starts the dashboard. configPath may be empty for the default location.
func Run(configPath string, daemon Daemon) error {
	if err := requireTTY(); err != nil {
		return err
	}
	if configPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = path
	}

	p := tea.NewProgram(newModel(configPath, daemon), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunInit walks through the settings form and returns the resulting config.
// It does not write anything.
func RunInit(base *config.Config) (*config.Config, error) {
	if err := requireTTY(); err != nil {
		return nil, err
	}
	if base == nil {
		base = config.DefaultConfig()
	}
	cfg := cloneConfig(base)
	if cfg == nil {
		return nil, fmt.Errorf("failed to copy config")
	}

	var v settingsValues
	v.load(cfg)
	if err := newSettingsForm(&v, 0).Run(); err != nil {
		return nil, err
	}
	if err := v.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func requireTTY() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	return nil
}
