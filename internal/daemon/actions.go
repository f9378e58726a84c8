package daemon

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// VTActions carries out shortcut actions for the daemon: quit cancels the
// host loop and a VT switch runs the configured chvt command.
type VTActions struct {
	chvt   string
	quit   func()
	logger *slog.Logger
}

// NewVTActions returns actions that run chvt to switch terminals and call
// quit to stop the daemon.
func NewVTActions(chvt string, quit func(), logger *slog.Logger) *VTActions {
	if chvt == "" {
		chvt = "chvt"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VTActions{chvt: chvt, quit: quit, logger: logger}
}

// SetCommand replaces the chvt command.
func (a *VTActions) SetCommand(chvt string) {
	if chvt != "" {
		a.chvt = chvt
	}
}

func (a *VTActions) Quit() {
	a.logger.Info("quit shortcut pressed, shutting down")
	if a.quit != nil {
		a.quit()
	}
}

func (a *VTActions) SwitchVT(vt int) error {
	a.logger.Info("switching virtual terminal", "vt", vt)
	out, err := exec.Command(a.chvt, strconv.Itoa(vt)).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s %d: %w: %s", a.chvt, vt, err, msg)
		}
		return fmt.Errorf("%s %d: %w", a.chvt, vt, err)
	}
	return nil
}
