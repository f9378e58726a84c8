package mcp

// ShellStatusInput is the input for the shell_status tool.
type ShellStatusInput struct{}

// ShellStatusOutput is the output for the shell_status tool.
type ShellStatusOutput struct {
	Running        bool   `json:"running"`
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
	Battery        string `json:"battery,omitempty"`
	Clock          string `json:"clock,omitempty"`
}

// ListSpacesInput is the input for the list_spaces tool.
type ListSpacesInput struct {
	AppID string `json:"app_id,omitempty" jsonschema:"Only return spaces owned by this application id"`
}

// SpaceEntry describes one space, bottom of the stack first.
type SpaceEntry struct {
	ID            int      `json:"id"`
	AppID         string   `json:"app_id"`
	Surfaces      []uint32 `json:"surfaces"`
	PointerTarget *uint32  `json:"pointer_target,omitempty"`
	HomeBar       string   `json:"home_bar"`
	Top           bool     `json:"top"`
}

// ListSpacesOutput is the output for the list_spaces tool.
type ListSpacesOutput struct {
	Spaces []SpaceEntry `json:"spaces"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	Reloaded bool `json:"reloaded"`
}

// ReplayScriptInput is the input for the replay_script tool.
type ReplayScriptInput struct {
	Script string `json:"script" jsonschema:"Replay script as YAML (screen, surfaces, steps)"`
	Frames bool   `json:"frames,omitempty" jsonschema:"When true, include every drawn surface in the transcript"`
}

// ReplayScriptOutput is the output for the replay_script tool.
type ReplayScriptOutput struct {
	Lines  []string     `json:"lines"`
	Spaces []SpaceEntry `json:"spaces"`
}
