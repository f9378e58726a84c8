package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/status"
)

// CommandType names a request. The wire format is one JSON object per line in
// each direction, one request per connection.
type CommandType string

const (
	CommandReload     CommandType = "RELOAD"
	CommandGetStatus  CommandType = "GET_STATUS"
	CommandListSpaces CommandType = "LIST_SPACES"
	CommandPing       CommandType = "PING"
)

type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData answers GET_STATUS.
type StatusData struct {
	DaemonRunning  bool   `json:"daemon_running"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	Backend        string `json:"backend"`
	SpaceCount     int    `json:"space_count"`
	ViewCount      int    `json:"view_count"`
	TopSpace       *int   `json:"top_space,omitempty"`
	TopApp         string `json:"top_app,omitempty"`
	HomeBar        string `json:"home_bar"`
	PointerGrabbed bool   `json:"pointer_grabbed"`
	TouchGrabbed   bool   `json:"touch_grabbed"`
	Events         uint64 `json:"events"`
	Frames         uint64 `json:"frames"`

	Battery      *status.BatteryState `json:"battery,omitempty"`
	BatteryError string               `json:"battery_error,omitempty"`
	Clock        string               `json:"clock"`
}

// SpacesData answers LIST_SPACES, back to front.
type SpacesData struct {
	Spaces []shell.SpaceInfo `json:"spaces"`
}

// NewStatusData summarizes a shell snapshot and status reading.
func NewStatusData(snap shell.Snapshot, st status.Status) StatusData {
	data := StatusData{
		DaemonRunning:  true,
		SpaceCount:     len(snap.Spaces),
		HomeBar:        "none",
		PointerGrabbed: snap.PointerGrabbed,
		TouchGrabbed:   snap.TouchGrabbed,
		Events:         snap.Events,
		Frames:         snap.Frames,
		Battery:        st.Battery,
		BatteryError:   st.BatteryError,
		Clock:          st.Clock,
	}
	for _, sp := range snap.Spaces {
		data.ViewCount += len(sp.Surfaces)
	}
	if top, ok := snap.TopSpace(); ok {
		id := int(top.ID)
		data.TopSpace = &id
		data.TopApp = top.AppID
		data.HomeBar = top.HomeBar
	}
	return data
}

func okResponse(data any) Response {
	if data == nil {
		return Response{Status: "OK"}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to marshal response data: %v", err))
	}
	return Response{Status: "OK", Data: raw}
}

func errorResponse(msg string) Response {
	return Response{Status: "ERROR", Error: msg}
}
