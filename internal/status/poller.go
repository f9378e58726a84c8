package status

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the battery is re-read.
const DefaultInterval = 5 * time.Second

// Status is a point-in-time status bar reading.
type Status struct {
	Battery      *BatteryState `json:"battery,omitempty"`
	BatteryError string        `json:"battery_error,omitempty"`
	Clock        string        `json:"clock"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// PollerConfig holds configuration for the poller.
type PollerConfig struct {
	BatteryPath string
	Interval    time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// Poller periodically re-reads the battery.
type Poller struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.RWMutex
	battery    BatteryState
	batteryErr error
	checkedAt  time.Time
}

// NewPoller creates a poller and takes a first reading.
func NewPoller(cfg PollerConfig) *Poller {
	p := &Poller{
		path:     cfg.BatteryPath,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if p.path == "" {
		p.path = DefaultBatteryPath
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	p.Check()
	return p
}

// Run re-reads the battery every interval. Blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug("battery poller started", "path", p.path, "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("battery poller stopped")
			return
		case <-ticker.C:
			p.Check()
		}
	}
}

// Check reads the battery once.
func (p *Poller) Check() {
	state, err := ReadBattery(p.path)

	p.mu.Lock()
	prevErr := p.batteryErr
	p.battery = state
	p.batteryErr = err
	p.checkedAt = p.now()
	p.mu.Unlock()

	if err != nil && prevErr == nil {
		p.logger.Warn("battery unavailable", "path", p.path, "error", err)
	}
	if err == nil && state.Critical && !state.Charging {
		p.logger.Warn("battery critical", "percentage", state.Percentage)
	}
}

// Status returns the last battery reading and the current clock text.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{
		Clock:     ClockText(p.now()),
		CheckedAt: p.checkedAt,
	}
	if p.batteryErr != nil {
		st.BatteryError = p.batteryErr.Error()
	} else {
		b := p.battery
		st.Battery = &b
	}
	return st
}
