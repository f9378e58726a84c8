package daemon

import (
	"log/slog"
	"slices"

	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/space"
)

// unknownAppID groups windows that carry no application id.
const unknownAppID = "unknown"

// Window is a top-level host window eligible to become a view.
type Window struct {
	ID    platform.SurfaceID
	AppID string
}

// ViewManager is the part of the shell the synchronizer drives.
// *shell.Server implements it.
type ViewManager interface {
	AddView(appID string, surface platform.SurfaceID) space.ID
	RemoveViewForSurface(surface platform.SurfaceID) bool
	Surfaces() []platform.SurfaceID
}

// StateSynchronizer keeps the shell's views in step with the host's
// mapped windows.
type StateSynchronizer struct {
	views  ViewManager
	logger *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(views ViewManager, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{views: views, logger: logger}
}

func (s *StateSynchronizer) tracked(id platform.SurfaceID) bool {
	_, found := slices.BinarySearch(s.views.Surfaces(), id)
	return found
}

// HandleWindowMapped adds a newly mapped window as a view. Windows already
// tracked are left alone. It reports whether a view was added.
func (s *StateSynchronizer) HandleWindowMapped(w Window) bool {
	if s.tracked(w.ID) {
		return false
	}
	appID := w.AppID
	if appID == "" {
		appID = unknownAppID
	}
	id := s.views.AddView(appID, w.ID)
	s.logger.Info("window mapped",
		"window_id", uint32(w.ID),
		"app_id", appID,
		"space", int(id))
	return true
}

// HandleWindowUnmapped removes the view of an unmapped window. Untracked
// windows are ignored. It reports whether a view was removed.
func (s *StateSynchronizer) HandleWindowUnmapped(id platform.SurfaceID) bool {
	if !s.tracked(id) {
		return false
	}
	if !s.views.RemoveViewForSurface(id) {
		return false
	}
	s.logger.Info("window unmapped", "window_id", uint32(id))
	return true
}

// Sync makes the tracked views equal to windows: missing windows are added
// in the given order and views whose window is gone are removed.
func (s *StateSynchronizer) Sync(windows []Window) (added, removed int) {
	present := make(map[platform.SurfaceID]bool, len(windows))
	for _, w := range windows {
		present[w.ID] = true
	}

	for _, id := range s.views.Surfaces() {
		if !present[id] && s.HandleWindowUnmapped(id) {
			removed++
		}
	}
	for _, w := range windows {
		if s.HandleWindowMapped(w) {
			added++
		}
	}
	return added, removed
}
