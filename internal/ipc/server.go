package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/runtimepath"
	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/status"
)

// StateSource publishes shell snapshots. *shell.Server implements it.
type StateSource interface {
	Snapshot() shell.Snapshot
}

// StatusSource reports battery and clock. *status.Poller implements it.
type StatusSource interface {
	Status() status.Status
}

type ServerConfig struct {
	// SocketPath overrides the default runtime socket.
	SocketPath string
	// ConfigPath is re-read on RELOAD.
	ConfigPath string
	Backend    string
	Config     *config.Config
	State      StateSource
	Status     StatusSource
	// Reload receives a tick after a successful RELOAD.
	Reload chan<- struct{}
	Logger *slog.Logger
}

// Server answers daemon requests on a unix socket. Handlers only read
// snapshots, so connections are served concurrently.
type Server struct {
	opts    ServerConfig
	socket  string
	started time.Time
	logger  *slog.Logger

	cfg      atomic.Pointer[config.Config]
	closed   atomic.Bool
	listener net.Listener
	conns    sync.WaitGroup
	handlers map[CommandType]func() (any, error)
}

func NewServer(opts ServerConfig) (*Server, error) {
	socket, err := runtimepath.ResolveSocket(opts.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	s := &Server{
		opts:    opts,
		socket:  socket,
		started: time.Now(),
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.cfg.Store(opts.Config)
	s.handlers = map[CommandType]func() (any, error){
		CommandPing:       func() (any, error) { return nil, nil },
		CommandReload:     s.reload,
		CommandGetStatus:  s.statusData,
		CommandListSpaces: s.spaces,
	}
	return s, nil
}

func (s *Server) SocketPath() string { return s.socket }

// Start binds the socket, replacing a stale one, and serves in the background.
func (s *Server) Start() error {
	if err := os.Remove(s.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socket, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = ln
	s.logger.Info("IPC server listening", "socket", s.socket)
	go s.serve()
	return nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(defaultTimeout))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	var resp Response
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		resp = errorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.dispatch(req.Command)
	}
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.logger.Warn("failed to send response", "command", req.Command, "error", err)
	}
}

func (s *Server) dispatch(cmd CommandType) Response {
	h, ok := s.handlers[cmd]
	if !ok {
		return errorResponse(fmt.Sprintf("Unknown command: %s", cmd))
	}
	data, err := h()
	if err != nil {
		return errorResponse(err.Error())
	}
	return okResponse(data)
}

func (s *Server) reload() (any, error) {
	s.logger.Info("IPC: received RELOAD command")
	res, err := config.LoadFromPath(s.opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	s.UpdateConfig(res.Config)
	if s.opts.Reload != nil {
		select {
		case s.opts.Reload <- struct{}{}:
		default:
		}
	}
	s.logger.Info("IPC: config reloaded", "files", len(res.Files))
	return nil, nil
}

func (s *Server) statusData() (any, error) {
	var snap shell.Snapshot
	if s.opts.State != nil {
		snap = s.opts.State.Snapshot()
	}
	var st status.Status
	if s.opts.Status != nil {
		st = s.opts.Status.Status()
	}
	data := NewStatusData(snap, st)
	data.UptimeSeconds = int64(time.Since(s.started).Seconds())
	data.Backend = s.opts.Backend
	return data, nil
}

func (s *Server) spaces() (any, error) {
	if s.opts.State == nil {
		return nil, errors.New("no shell state available")
	}
	return SpacesData{Spaces: s.opts.State.Snapshot().Spaces}, nil
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket file.
func (s *Server) Stop() {
	if s.closed.Swap(true) {
		return
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socket)
}

// GetConfig returns the config most recently loaded by RELOAD or UpdateConfig.
func (s *Server) GetConfig() *config.Config { return s.cfg.Load() }

func (s *Server) UpdateConfig(cfg *config.Config) { s.cfg.Store(cfg) }
