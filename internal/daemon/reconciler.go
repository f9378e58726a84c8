package daemon

import (
	"log/slog"
	"time"
)

// WindowLister returns the host's current top-level windows.
type WindowLister func() ([]Window, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler corrects drift between the host's windows and the shell's
// views, for example when an unmap notification was missed.
type Reconciler struct {
	interval    time.Duration
	sync        *StateSynchronizer
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, sync *StateSynchronizer, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		sync:        sync,
		listWindows: listWindows,
		logger:      logger,
	}
}

// Interval returns how often the host loop should reconcile.
func (r *Reconciler) Interval() time.Duration {
	return r.interval
}

// ReconcileNow performs a single reconciliation pass. It must run on the
// goroutine that owns the shell.
func (r *Reconciler) ReconcileNow() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	windows, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	added, removed := r.sync.Sync(windows)
	if added > 0 || removed > 0 {
		r.logger.Info("reconciler: views updated",
			"added", added,
			"removed", removed,
			"windows", len(windows))
	}
}
