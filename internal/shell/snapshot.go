package shell

import (
	"time"

	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/space"
)

// SpaceInfo describes one space in a Snapshot.
type SpaceInfo struct {
	ID            space.ID `json:"id"`
	AppID         string   `json:"app_id"`
	Surfaces      []uint32 `json:"surfaces"`
	PointerTarget *uint32  `json:"pointer_target,omitempty"`
	HomeBar       string   `json:"home_bar"`
	HomeBarOffset float64  `json:"home_bar_offset"`
	Top           bool     `json:"top"`
}

// Snapshot is a read-only copy of the server state for other goroutines.
type Snapshot struct {
	Spaces         []SpaceInfo `json:"spaces"`
	PointerGrabbed bool        `json:"pointer_grabbed"`
	TouchGrabbed   bool        `json:"touch_grabbed"`
	Events         uint64      `json:"events"`
	Frames         uint64      `json:"frames"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TopSpace returns the space that receives input.
func (s Snapshot) TopSpace() (SpaceInfo, bool) {
	if len(s.Spaces) == 0 {
		return SpaceInfo{}, false
	}
	return s.Spaces[len(s.Spaces)-1], true
}

// Snapshot returns the last published state. It is safe to call from any
// goroutine.
func (s *Server) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

func (s *Server) publish() {
	snap := Snapshot{
		Spaces:         make([]SpaceInfo, 0, len(s.order)),
		PointerGrabbed: s.pointerGrabbed,
		TouchGrabbed:   s.touchGrabbed,
		Events:         s.events,
		Frames:         s.frames,
		UpdatedAt:      s.now(),
	}
	for i, id := range s.order {
		sp := s.spaces[id]
		info := SpaceInfo{
			ID:       id,
			AppID:    s.appOf[id],
			Surfaces: surfaceIDs(sp.Surfaces()),
			HomeBar:  "unrendered",
			Top:      i == len(s.order)-1,
		}
		if target, ok := sp.PointerTarget(); ok {
			t := uint32(target)
			info.PointerTarget = &t
		}
		if strip := sp.Strip(); strip != nil {
			info.HomeBar = strip.State().String()
			info.HomeBarOffset = strip.Offset()
		}
		snap.Spaces = append(snap.Spaces, info)
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

func surfaceIDs(ids []platform.SurfaceID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}
