package daemon

import (
	"fmt"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/homebar"
	"github.com/touchshell/touchshell/internal/shell"
)

// StripConfig converts the home bar settings.
func StripConfig(c config.HomeBarConfig) homebar.Config {
	return homebar.Config{
		RegionHeight:    c.RegionHeight,
		IndicatorHeight: c.IndicatorHeight,
		DampingRatio:    c.DampingRatio,
		Response:        c.Response,
	}
}

// ShellOptions returns the server options derived from cfg: home bar,
// space eviction and shortcuts.
func ShellOptions(cfg *config.Config) ([]shell.Option, error) {
	bindings, err := cfg.Bindings()
	if err != nil {
		return nil, fmt.Errorf("invalid shortcuts: %w", err)
	}
	return []shell.Option{
		shell.WithStrip(StripConfig(cfg.HomeBar)),
		shell.WithEvictEmpty(cfg.Spaces.EvictEmpty),
		shell.WithShortcuts(bindings),
	}, nil
}
