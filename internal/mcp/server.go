package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/replay"
	"github.com/touchshell/touchshell/internal/shell"
)

const (
	ServerName    = "touchshell"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools need.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListSpaces() ([]shell.SpaceInfo, error)
	Reload() error
}

// Server is the MCP server for touchshell introspection.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server that talks to the daemon over IPC.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shell_status",
		Description: "Report the running shell: space and view counts, the top application, home-bar state, grab flags, event and frame counters, battery and clock.",
	}, s.handleShellStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_spaces",
		Description: "List the space stack bottom to top. The last entry is the top space that receives input. Optionally filter by application id.",
	}, s.handleListSpaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Ask the daemon to reload its configuration file.",
	}, s.handleReloadConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "replay_script",
		Description: "Run a YAML replay script against an offline shell and return the transcript of backend calls and the final space stack. Does not touch the running daemon.",
	}, s.handleReplayScript)
}

func (s *Server) handleShellStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input ShellStatusInput) (*mcpsdk.CallToolResult, ShellStatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ShellStatusOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	out := ShellStatusOutput{
		Running:        st.DaemonRunning,
		UptimeSeconds:  st.UptimeSeconds,
		Backend:        st.Backend,
		SpaceCount:     st.SpaceCount,
		ViewCount:      st.ViewCount,
		TopSpace:       st.TopSpace,
		TopApp:         st.TopApp,
		HomeBar:        st.HomeBar,
		PointerGrabbed: st.PointerGrabbed,
		TouchGrabbed:   st.TouchGrabbed,
		Events:         st.Events,
		Frames:         st.Frames,
		Clock:          st.Clock,
	}
	if st.Battery != nil {
		out.Battery = st.Battery.Text()
	} else if st.BatteryError != "" {
		out.Battery = "unavailable: " + st.BatteryError
	}
	return nil, out, nil
}

func (s *Server) handleListSpaces(ctx context.Context, req *mcpsdk.CallToolRequest, input ListSpacesInput) (*mcpsdk.CallToolResult, ListSpacesOutput, error) {
	spaces, err := s.daemon.ListSpaces()
	if err != nil {
		return nil, ListSpacesOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	out := ListSpacesOutput{Spaces: make([]SpaceEntry, 0, len(spaces))}
	for _, sp := range spaces {
		if input.AppID != "" && sp.AppID != input.AppID {
			continue
		}
		out.Spaces = append(out.Spaces, spaceEntry(sp))
	}
	return nil, out, nil
}

func (s *Server) handleReloadConfig(ctx context.Context, req *mcpsdk.CallToolRequest, input ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadConfigOutput{}, fmt.Errorf("reload failed: %w", err)
	}
	s.logger.Info("config reload requested", "via", "mcp")
	return nil, ReloadConfigOutput{Reloaded: true}, nil
}

func (s *Server) handleReplayScript(ctx context.Context, req *mcpsdk.CallToolRequest, input ReplayScriptInput) (*mcpsdk.CallToolResult, ReplayScriptOutput, error) {
	if strings.TrimSpace(input.Script) == "" {
		return nil, ReplayScriptOutput{}, fmt.Errorf("script is required")
	}
	script, err := replay.Parse(strings.NewReader(input.Script))
	if err != nil {
		return nil, ReplayScriptOutput{}, err
	}
	res, err := replay.Run(script, replay.Options{Logger: s.logger, Frames: input.Frames})
	if err != nil {
		return nil, ReplayScriptOutput{}, err
	}
	out := ReplayScriptOutput{
		Lines:  res.Lines,
		Spaces: make([]SpaceEntry, 0, len(res.Snapshot.Spaces)),
	}
	for _, sp := range res.Snapshot.Spaces {
		out.Spaces = append(out.Spaces, spaceEntry(sp))
	}
	return nil, out, nil
}

func spaceEntry(sp shell.SpaceInfo) SpaceEntry {
	surfaces := sp.Surfaces
	if surfaces == nil {
		surfaces = []uint32{}
	}
	return SpaceEntry{
		ID:            int(sp.ID),
		AppID:         sp.AppID,
		Surfaces:      surfaces,
		PointerTarget: sp.PointerTarget,
		HomeBar:       sp.HomeBar,
		Top:           sp.Top,
	}
}
