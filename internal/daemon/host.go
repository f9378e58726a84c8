package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/touchshell/touchshell/internal/config"
	"github.com/touchshell/touchshell/internal/event"
	"github.com/touchshell/touchshell/internal/hotkeys"
	"github.com/touchshell/touchshell/internal/ipc"
	"github.com/touchshell/touchshell/internal/platform"
	"github.com/touchshell/touchshell/internal/runtimepath"
	"github.com/touchshell/touchshell/internal/shell"
	"github.com/touchshell/touchshell/internal/status"
	"github.com/touchshell/touchshell/internal/x11"
)

// Options configures the X11 host.
type Options struct {
	// ConfigPath is re-read on reload. Empty uses the default path.
	ConfigPath string
	Config     *config.Config
	Logger     *slog.Logger
}

// host owns the shell. Every field is touched only from the loop goroutine,
// which also runs the X event callbacks between MainPing's before and after
// pings.
type host struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger

	conn       *x11.Connection
	backend    *x11.Backend
	overlay    *x11.Overlay
	translator *x11.Translator
	server     *shell.Server
	hotkeys    *hotkeys.Handler
	actions    *VTActions
	sync       *StateSynchronizer
	reconciler *Reconciler
	ipc        *ipc.Server

	dirty     bool
	needSync  bool
	fatal     error
	clientAtm xproto.Atom
}

// Run starts the X11 development host and blocks until ctx is cancelled,
// a quit shortcut is pressed, or the shell hits a fatal error.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	lockPath, err := runtimepath.LockPath()
	if err != nil {
		return err
	}
	lock, err := AcquireLock(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := &host{cfg: cfg, configPath: configPath, logger: logger}
	if err := h.setup(cancel); err != nil {
		return err
	}
	defer h.conn.Close()
	if h.overlay != nil {
		defer h.overlay.Destroy()
	}

	poller := status.NewPoller(status.PollerConfig{
		BatteryPath: cfg.Status.BatteryPath,
		Interval:    time.Duration(cfg.Status.CheckIntervalSeconds) * time.Second,
		Logger:      logger.With("component", "status"),
	})
	go poller.Run(ctx)

	reloadChan := make(chan struct{}, 1)
	h.ipc, err = ipc.NewServer(ipc.ServerConfig{
		SocketPath: cfg.IPC.Socket,
		ConfigPath: configPath,
		Backend:    "x11",
		Config:     cfg,
		State:      h.server,
		Status:     poller,
		Reload:     reloadChan,
		Logger:     logger.With("component", "ipc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := h.ipc.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer h.ipc.Stop()

	fileChanged := make(chan struct{}, 1)
	if watcher, err := NewConfigWatcher(configPath, DefaultWatchDebounce, logger.With("component", "watch")); err != nil {
		logger.Warn("config file watch disabled", "error", err)
	} else {
		go watcher.Run(ctx, func() {
			select {
			case fileChanged <- struct{}{}:
			default:
			}
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	frameTicker := time.NewTicker(time.Second / time.Duration(cfg.X11.FrameRate))
	defer frameTicker.Stop()

	var reconcileC <-chan time.Time
	if cfg.X11.ReconcileIntervalSeconds > 0 {
		t := time.NewTicker(h.reconciler.Interval())
		defer t.Stop()
		reconcileC = t.C
	}

	pingBefore, pingAfter, pingQuit := xevent.MainPing(h.conn.XUtil)
	defer xevent.Quit(h.conn.XUtil)

	logger.Info("touchshell daemon started",
		"output", h.backend.Output().Name,
		"width", h.backend.Output().Width,
		"height", h.backend.Output().Height,
		"socket", h.ipc.SocketPath())

	for {
		select {
		case <-pingBefore:
			<-pingAfter
			if h.needSync {
				h.needSync = false
				h.reconciler.ReconcileNow()
				h.dirty = true
			}
		case <-frameTicker.C:
			if h.dirty || h.server.Animating() {
				h.dirty = false
				h.server.Render(h.backend)
			}
		case <-reconcileC:
			h.reconciler.ReconcileNow()
		case <-reloadChan:
			h.applyConfig(h.ipc.GetConfig())
		case <-fileChanged:
			logger.Info("config file changed, reloading", "path", configPath)
			h.reloadFromDisk()
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				h.reloadFromDisk()
				continue
			}
			logger.Info("shutting down touchshell daemon", "signal", sig.String())
			return nil
		case <-pingQuit:
			return errors.New("X11 event loop stopped")
		case <-ctx.Done():
			logger.Info("shutting down touchshell daemon")
			return nil
		}

		if h.fatal != nil {
			return h.fatal
		}
	}
}

func (h *host) setup(quit func()) error {
	conn, err := x11.NewConnection(h.cfg.X11.Display)
	if err != nil {
		return err
	}
	h.conn = conn

	output, err := conn.Output()
	if err != nil {
		conn.Close()
		return err
	}

	overlay, err := x11.NewOverlay(conn)
	if err != nil {
		h.logger.Warn("home bar overlay disabled", "error", err)
		overlay = nil
	}
	h.overlay = overlay

	h.backend = x11.NewBackend(conn, overlay, x11.BackendConfig{
		Output:          output,
		ActivateOnEnter: h.cfg.X11.ActivateOnEnter,
		Logger:          h.logger,
	})
	h.translator = x11.NewTranslator(output, h.cfg.X11.EmulateTouch)
	h.actions = NewVTActions(h.cfg.Shortcuts.ChvtCommand, quit, h.logger)

	shellOpts, err := ShellOptions(h.cfg)
	if err != nil {
		conn.Close()
		return err
	}
	shellOpts = append(shellOpts, shell.WithLogger(h.logger), shell.WithActions(h.actions))
	h.server = shell.New(h.backend, h.backend, h.backend.Dimensions(), shellOpts...)

	h.sync = NewStateSynchronizer(h.server, h.logger.With("component", "sync"))
	h.reconciler = NewReconciler(ReconcilerConfig{
		Interval: time.Duration(h.cfg.X11.ReconcileIntervalSeconds) * time.Second,
		Logger:   h.logger.With("component", "reconciler"),
	}, h.sync, h.listWindows)

	// Adopt windows that were mapped before the daemon started.
	h.reconciler.ReconcileNow()
	h.dirty = true

	h.hotkeys = hotkeys.NewHandler(conn)
	h.registerShortcuts()

	if err := conn.WatchRoot(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to watch root window: %w", err)
	}
	if err := conn.WatchRootInput(); err != nil {
		h.logger.Warn("desktop pointer input unavailable", "error", err)
	}
	h.attach(conn.Root)
	if overlay != nil {
		h.attachInput(overlay.Window())
	}
	if atom, err := xprop.Atm(conn.XUtil, "_NET_CLIENT_LIST"); err == nil {
		h.clientAtm = atom
	}
	return nil
}

func (h *host) listWindows() ([]Window, error) {
	clients, err := h.conn.Clients()
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, len(clients))
	for _, win := range clients {
		if h.overlay != nil && win == h.overlay.Window() {
			continue
		}
		windows = append(windows, Window{ID: platform.SurfaceID(win), AppID: h.conn.AppID(win)})
	}
	return windows, nil
}

func (h *host) registerShortcuts() {
	bindings, err := h.cfg.Bindings()
	if err != nil {
		h.logger.Warn("shortcuts disabled", "error", err)
		return
	}
	err = h.hotkeys.Register(bindings, func(ev xevent.KeyPressEvent) {
		h.handleRaw(h.translator.Key(ev.Detail, ev.State, ev.Time, true))
	})
	if err != nil {
		h.logger.Warn("failed to register some shortcuts", "error", err)
	}
}

// attach connects structure and input callbacks on the root window.
func (h *host) attach(root xproto.Window) {
	xu := h.conn.XUtil
	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, _ xevent.MapNotifyEvent) {
		h.needSync = true
	}).Connect(xu, root)
	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		if h.sync.HandleWindowUnmapped(platform.SurfaceID(ev.Window)) {
			h.dirty = true
		}
		h.needSync = true
	}).Connect(xu, root)
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if h.sync.HandleWindowUnmapped(platform.SurfaceID(ev.Window)) {
			h.dirty = true
		}
	}).Connect(xu, root)
	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if h.clientAtm != 0 && ev.Atom == h.clientAtm {
			h.needSync = true
		}
	}).Connect(xu, root)
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window == root {
			h.refreshOutput()
		}
	}).Connect(xu, root)
	h.attachInput(root)
}

// attachInput forwards pointer input delivered to win into the shell.
func (h *host) attachInput(win xproto.Window) {
	xu := h.conn.XUtil
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if raw, ok := h.translator.Button(ev.Detail, ev.RootX, ev.RootY, ev.Time, true); ok {
			h.handleRaw(raw)
		}
	}).Connect(xu, win)
	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if raw, ok := h.translator.Button(ev.Detail, ev.RootX, ev.RootY, ev.Time, false); ok {
			h.handleRaw(raw)
		}
	}).Connect(xu, win)
	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		h.handleRaw(h.translator.Motion(ev.RootX, ev.RootY, ev.Time))
	}).Connect(xu, win)
}

func (h *host) handleRaw(raw event.Raw) {
	if err := h.server.HandleRaw(raw); err != nil {
		if errors.Is(err, event.ErrUnmappable) {
			h.fatal = err
			return
		}
		h.logger.Warn("input dropped", "error", err)
		return
	}
	h.dirty = true
}

func (h *host) refreshOutput() {
	output, err := h.conn.Output()
	if err != nil {
		h.logger.Warn("failed to query output", "error", err)
		return
	}
	if output == h.backend.Output() {
		return
	}
	if raw, ok := h.translator.Cancel(0); ok {
		h.handleRaw(raw)
	}
	h.backend.SetOutput(output)
	h.translator.SetOutput(output)
	h.dirty = true
	h.logger.Info("output changed", "output", output.Name, "width", output.Width, "height", output.Height)
}

func (h *host) reloadFromDisk() {
	res, err := config.LoadFromPath(h.configPath)
	if err != nil {
		h.logger.Error("config reload failed", "error", err)
		return
	}
	h.ipc.UpdateConfig(res.Config)
	h.applyConfig(res.Config)
}

// applyConfig pushes a reloaded config into the running components. Display,
// frame rate, IPC socket and status settings need a restart.
func (h *host) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	opts, err := ShellOptions(cfg)
	if err != nil {
		h.logger.Error("config reload rejected", "error", err)
		return
	}
	h.cfg = cfg
	h.server.Reconfigure(opts...)
	h.backend.SetActivateOnEnter(cfg.X11.ActivateOnEnter)
	h.actions.SetCommand(cfg.Shortcuts.ChvtCommand)
	h.hotkeys.Reset()
	h.registerShortcuts()
	h.logger.Info("config reloaded")
}
