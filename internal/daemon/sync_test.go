package daemon

import (
	"errors"
	"slices"
	"testing"

	"github.com/touchshell/touchshell/internal/logging"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/space"
)

type fakeSurfaces map[platform.SurfaceID]platform.Rect

func (f fakeSurfaces) Geometry(id platform.SurfaceID) (platform.Rect, bool) {
	r, ok := f[id]
	return r, ok
}

type nopSeat struct{}

func (nopSeat) PointerNotifyEnter(platform.SurfaceID, platform.Point) {}
func (nopSeat) PointerNotifyLeave(platform.SurfaceID) {}
func (nopSeat) PointerNotifyMotion(uint32, platform.Point) {}
func (nopSeat) PointerNotifyButton(uint32, uint32, bool) {}
func (nopSeat) PointerNotifyAxis(uint32, platform.AxisOrientation, float64, platform.AxisSource) {}
func (nopSeat) TouchNotifyDown(platform.SurfaceID, uint32, int32, platform.Point) {}
func (nopSeat) TouchNotifyMotion(uint32, int32, platform.Point) {}
func (nopSeat) TouchNotifyUp(uint32, int32) {}
func (nopSeat) TouchNotifyCancel(uint32, int32) {}

func newTestServer() *shell.Server {
	return shell.New(fakeSurfaces{}, nopSeat{}, platform.Size{Width: 720, Height: 1440},
		shell.WithLogger(logging.Discard()))
}

func TestStateSynchronizer_MapUnmap(t *testing.T) {
	srv := newTestServer()
	s := NewStateSynchronizer(srv, logging.Discard())

	if !s.HandleWindowMapped(Window{ID: 10, AppID: "term"}) {
		t.Fatalf("expected first map to add a view")
	}
	if s.HandleWindowMapped(Window{ID: 10, AppID: "term"}) {
		t.Fatalf("expected remap of a tracked window to be ignored")
	}
	s.HandleWindowMapped(Window{ID: 11})

	if id, ok := srv.SpaceForApp(unknownAppID); !ok || id != 1 {
		t.Fatalf("expected window without app id in space 1, got %v ok=%v", id, ok)
	}
	if got := srv.Surfaces(); !slices.Equal(got, []platform.SurfaceID{10, 11}) {
		t.Fatalf("unexpected surfaces %v", got)
	}

	if s.HandleWindowUnmapped(99) {
		t.Fatalf("expected unmap of an untracked window to be ignored")
	}
	if !s.HandleWindowUnmapped(10) {
		t.Fatalf("expected unmap to remove the view")
	}
	if got := srv.SpaceOrder(); !slices.Equal(got, []space.ID{1}) {
		t.Fatalf("expected the emptied space to be evicted, order %v", got)
	}
}

func TestStateSynchronizer_Sync(t *testing.T) {
	srv := newTestServer()
	s := NewStateSynchronizer(srv, logging.Discard())
	s.HandleWindowMapped(Window{ID: 1, AppID: "a"})
	s.HandleWindowMapped(Window{ID: 2, AppID: "b"})

	added, removed := s.Sync([]Window{{ID: 2, AppID: "b"}, {ID: 3, AppID: "c"}, {ID: 4, AppID: "b"}})
	if added != 2 || removed != 1 {
		t.Fatalf("expected 2 added and 1 removed, got %d and %d", added, removed)
	}
	if got := srv.Surfaces(); !slices.Equal(got, []platform.SurfaceID{2, 3, 4}) {
		t.Fatalf("unexpected surfaces %v", got)
	}
	if id, _ := srv.SpaceForApp("b"); id != 1 {
		t.Fatalf("expected window 4 to join space 1, got %d", id)
	}

	added, removed = s.Sync([]Window{{ID: 2, AppID: "b"}, {ID: 3, AppID: "c"}, {ID: 4, AppID: "b"}})
	if added != 0 || removed != 0 {
		t.Fatalf("expected no drift, got %d added and %d removed", added, removed)
	}
}

func TestReconciler(t *testing.T) {
	srv := newTestServer()
	s := NewStateSynchronizer(srv, logging.Discard())

	windows := []Window{{ID: 5, AppID: "x"}}
	var listErr error
	r := NewReconciler(ReconcilerConfig{Logger: logging.Discard()}, s, func() ([]Window, error) {
		return windows, listErr
	})
	if r.Interval() <= 0 {
		t.Fatalf("expected a default interval, got %v", r.Interval())
	}

	r.ReconcileNow()
	if got := srv.Surfaces(); !slices.Equal(got, []platform.SurfaceID{5}) {
		t.Fatalf("unexpected surfaces %v", got)
	}

	listErr = errors.New("display gone")
	windows = nil
	r.ReconcileNow()
	if got := srv.Surfaces(); len(got) != 1 {
		t.Fatalf("expected a failed listing to leave views alone, got %v", got)
	}
}

func TestReconciler_RecoversFromPanic(t *testing.T) {
	s := NewStateSynchronizer(newTestServer(), logging.Discard())
	r := NewReconciler(ReconcilerConfig{Logger: logging.Discard()}, s, func() ([]Window, error) {
		panic("boom")
	})
	r.ReconcileNow()
}
