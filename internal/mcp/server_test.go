package mcp

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/logging"
	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/status"
)

type fakeDaemon struct {
	status  *ipc.StatusData
	spaces  []shell.SpaceInfo
	err     error
	reloads int
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) { return f.status, f.err }

func (f *fakeDaemon) ListSpaces() ([]shell.SpaceInfo, error) { return f.spaces, f.err }

func (f *fakeDaemon) Reload() error {
	if f.err != nil {
		return f.err
	}
	f.reloads++
	return nil
}

func u32(v uint32) *uint32 { return &v }

func TestNewServer_RegistersTools(t *testing.T) {
	s := NewServer(&fakeDaemon{}, logging.Discard())
	if s.mcpServer == nil {
		t.Fatalf("expected MCP server to be created")
	}
}

func TestHandleShellStatus(t *testing.T) {
	top := 1
	d := &fakeDaemon{status: &ipc.StatusData{
		DaemonRunning: true,
		SpaceCount:    2,
		ViewCount:     3,
		TopSpace:      &top,
		TopApp:        "term",
		HomeBar:       "home-bar",
		Frames:        40,
		Battery:       &status.BatteryState{Percentage: 81},
		Clock:         "12:30",
	}}
	s := NewServer(d, logging.Discard())

	_, out, err := s.handleShellStatus(context.Background(), nil, ShellStatusInput{})
	if err != nil {
		t.Fatalf("handleShellStatus: %v", err)
	}
	if !out.Running || out.SpaceCount != 2 || out.ViewCount != 3 || out.TopApp != "term" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.TopSpace == nil || *out.TopSpace != 1 {
		t.Fatalf("expected top space 1, got %v", out.TopSpace)
	}
	if out.Battery != "81%" {
		t.Fatalf("expected battery text 81%%, got %q", out.Battery)
	}

	d.status = &ipc.StatusData{DaemonRunning: true, BatteryError: "no battery"}
	_, out, err = s.handleShellStatus(context.Background(), nil, ShellStatusInput{})
	if err != nil {
		t.Fatalf("handleShellStatus: %v", err)
	}
	if out.Battery != "unavailable: no battery" {
		t.Fatalf("unexpected battery text %q", out.Battery)
	}
}

func TestHandleShellStatus_DaemonDown(t *testing.T) {
	errDown := errors.New("connection refused")
	s := NewServer(&fakeDaemon{err: errDown}, logging.Discard())
	if _, _, err := s.handleShellStatus(context.Background(), nil, ShellStatusInput{}); !errors.Is(err, errDown) {
		t.Fatalf("expected wrapped daemon error, got %v", err)
	}
}

func TestHandleListSpaces(t *testing.T) {
	d := &fakeDaemon{spaces: []shell.SpaceInfo{
		{ID: 0, AppID: "term", Surfaces: []uint32{1, 3}, PointerTarget: u32(3), HomeBar: "home-bar"},
		{ID: 1, AppID: "browser", HomeBar: "home-bar", Top: true},
	}}
	s := NewServer(d, logging.Discard())

	tests := []struct {
		name  string
		appID string
		want  []int
	}{
		{"all", "", []int{0, 1}},
		{"filtered", "browser", []int{1}},
		{"no match", "mail", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListSpaces(context.Background(), nil, ListSpacesInput{AppID: tt.appID})
			if err != nil {
				t.Fatalf("handleListSpaces: %v", err)
			}
			got := make([]int, 0, len(out.Spaces))
			for _, sp := range out.Spaces {
				got = append(got, sp.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got ids %v, want %v", got, tt.want)
			}
		})
	}

	_, out, _ := s.handleListSpaces(context.Background(), nil, ListSpacesInput{})
	if out.Spaces[1].Surfaces == nil {
		t.Fatalf("expected empty surfaces slice, got nil")
	}
	if out.Spaces[0].PointerTarget == nil || *out.Spaces[0].PointerTarget != 3 {
		t.Fatalf("expected pointer target 3, got %v", out.Spaces[0].PointerTarget)
	}
}

func TestHandleReloadConfig(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, logging.Discard())
	_, out, err := s.handleReloadConfig(context.Background(), nil, ReloadConfigInput{})
	if err != nil {
		t.Fatalf("handleReloadConfig: %v", err)
	}
	if !out.Reloaded || d.reloads != 1 {
		t.Fatalf("expected one reload, got %+v reloads=%d", out, d.reloads)
	}
}

func TestHandleReplayScript(t *testing.T) {
	s := NewServer(&fakeDaemon{}, logging.Discard())

	script := `
screen: {width: 100, height: 100}
surfaces:
  - {id: 1, app_id: term, rect: {x: 0, y: 0, width: 100, height: 100}}
  - {id: 2, app_id: mail, rect: {x: 0, y: 0, width: 100, height: 100}}
steps:
  - map: 1
  - map: 2
`
	_, out, err := s.handleReplayScript(context.Background(), nil, ReplayScriptInput{Script: script})
	if err != nil {
		t.Fatalf("handleReplayScript: %v", err)
	}
	want := []string{"map 1 app=term space=0", "map 2 app=mail space=1"}
	if !slices.Equal(out.Lines, want) {
		t.Fatalf("got lines %v, want %v", out.Lines, want)
	}
	if len(out.Spaces) != 2 || out.Spaces[1].AppID != "mail" {
		t.Fatalf("unexpected spaces %+v", out.Spaces)
	}
}

func TestHandleReplayScript_Invalid(t *testing.T) {
	s := NewServer(&fakeDaemon{}, logging.Discard())
	tests := []struct {
		name   string
		script string
	}{
		{"empty", "  "},
		{"no screen", "steps: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.handleReplayScript(context.Background(), nil, ReplayScriptInput{Script: tt.script}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
