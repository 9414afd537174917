// Package daemon runs the framewm window manager: it takes over the X
// display, frames client windows and serves IPC until asked to stop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/decor"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/logging"
	"github.com/1broseidon/framewm/internal/menu"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/runtimepath"
	"github.com/1broseidon/framewm/internal/supervise"
	"github.com/1broseidon/framewm/internal/wm"
	"github.com/1broseidon/framewm/internal/x11"
)

// WMName is advertised through _NET_SUPPORTING_WM_CHECK.
const WMName = "framewm"

const shutdownTimeout = 3 * time.Second

// Options configure Run.
type Options struct {
	// Config is the already loaded configuration.
	Config *config.LoadResult
	// ConfigPath is re-read on reload.
	ConfigPath string
	// SocketPath overrides the IPC socket location.
	SocketPath string
	Logger     *slog.Logger
	// Level, when set, follows log_level across reloads.
	Level *slog.LevelVar
}

// Run manages the display until ctx is done or the X connection is lost.
// Every framed client is handed back to the root window before it returns.
func Run(ctx context.Context, opts Options) error {
	if opts.Config == nil || opts.Config.Config == nil {
		return errors.New("daemon: no config")
	}
	cfg := opts.Config.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return fmt.Errorf("connect to X display %q: %w", cfg.Display, err)
	}
	defer conn.Close()

	if err := conn.BecomeWM(WMName); err != nil {
		return err
	}

	settings, err := SettingsFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	loop := wm.NewLoop()
	bridge := platform.NewLinuxBridge(conn, logger)
	factory := &decor.Factory{
		Conn:    conn,
		Bridge:  bridge,
		Cursors: decor.NewCursors(conn.XUtil),
		Style:   StyleFromConfig(cfg),
		Menu:    menuBackend(cfg.Menu.Command, logger),
		Post:    loop.Post,
		Logger:  logger,
	}
	manager := wm.NewManager(wm.ManagerConfig{
		Bridge:    bridge,
		Surfaces:  factory.New,
		Scheduler: loop,
		Settings:  settings,
		Logger:    logger,
	})

	display := cfg.Display
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	ctl := &controller{
		loop:       loop,
		manager:    manager,
		logger:     logger,
		display:    display,
		configPath: opts.ConfigPath,
		cfg:        cfg,
		load:       config.LoadFromPath,
		apply: func(next *config.Config) error {
			s, err := SettingsFromConfig(next, logger)
			if err != nil {
				return err
			}
			manager.Apply(s)
			factory.Style = StyleFromConfig(next)
			factory.Menu = menuBackend(next.Menu.Command, logger)
			if opts.Level != nil {
				if lvl, err := logging.ParseLevel(next.LogLevel); err == nil {
					opts.Level.Set(lvl)
				}
			}
			return nil
		},
	}
	bridge.OnRequest(ctl.handleRequest)

	connectRoot(conn, bridge, manager, logger)
	adopt(conn, manager, logger)

	// Services run under the supervisor; the event loop itself stays on
	// this goroutine's watch so frames can be released before it stops.
	sup := supervise.New("framewm", logger)
	socketPath := opts.SocketPath
	if socketPath == "" {
		if socketPath, err = runtimepath.SocketPath(); err != nil {
			return err
		}
	}
	supervise.Add(sup, ipc.NewServer(socketPath, ctl, logger))
	if cfg.ReconcileIntervalMS > 0 {
		supervise.Add(sup, NewReconciler(ReconcilerConfig{
			Interval: time.Duration(cfg.ReconcileIntervalMS) * time.Millisecond,
			Logger:   logger,
		}, loop, manager))
	}
	supervise.Add(sup, supervise.NewFunc("sighup", func(ctx context.Context) error {
		return reloadOnHangup(ctx, ctl, logger)
	}))
	if cfg.WatchConfig && opts.ConfigPath != "" {
		if info, err := os.Stat(filepath.Dir(opts.ConfigPath)); err == nil && info.IsDir() {
			supervise.Add(sup, config.NewWatcher(opts.ConfigPath, func() {
				reloadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				_ = ctl.Reload(reloadCtx)
			}, logger))
		} else {
			logger.Debug("config directory missing, not watching", "path", opts.ConfigPath)
		}
	}

	supCtx, stopSup := context.WithCancel(ctx)
	defer stopSup()
	supDone := sup.ServeBackground(supCtx)

	before, after, quit := conn.MainPing()
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(loopCtx, wm.Pings{Before: before, After: after, Quit: quit})
	}()

	logger.Info("framewm running", "display", display, "frames", manager.Len(), "socket", socketPath)

	var runErr error
	loopRunning := true
	select {
	case <-ctx.Done():
	case err := <-supDone:
		supDone = nil
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = fmt.Errorf("services stopped: %w", err)
		}
	case <-loopDone:
		loopRunning = false
		runErr = errors.New("X event loop stopped")
	}

	stopSup()
	if supDone != nil {
		<-supDone
	}

	if loopRunning {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := loop.Call(shutdownCtx, func() error {
			manager.Shutdown()
			return nil
		})
		cancel()
		if err != nil {
			logger.Warn("releasing clients timed out", "error", err)
		}
		stopLoop()
		<-loopDone
	} else {
		// X callbacks are parked, so the registry is ours.
		manager.Shutdown()
	}

	logger.Info("framewm stopped")
	return runErr
}

func menuBackend(name string, logger *slog.Logger) menu.Backend {
	backend, err := menu.NewBackend(name)
	if err != nil {
		logger.Warn("titlebar menu disabled", "command", name, "error", err)
		backend, _ = menu.NewBackend("none")
	}
	return backend
}

// connectRoot handles requests from clients that have no frame yet.
func connectRoot(conn *x11.Connection, bridge *platform.LinuxBridge, manager *wm.Manager, logger *slog.Logger) {
	xu := conn.XUtil

	xevent.MapRequestFun(func(_ *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		if ev.Parent != conn.Root {
			return
		}
		id := platform.ClientID(ev.Window)
		if _, ok := manager.Frame(id); ok || bridge.Tracked(id) {
			return
		}
		manage(conn, manager, logger, ev.Window)
	}).Connect(xu, conn.Root)

	xevent.ConfigureRequestFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		if ev.Parent != conn.Root || bridge.Tracked(platform.ClientID(ev.Window)) {
			return
		}
		conn.ConfigureUnmanaged(*ev.ConfigureRequestEvent)
	}).Connect(xu, conn.Root)
}

// manage frames win, or maps it bare when it should not get a frame.
func manage(conn *x11.Connection, manager *wm.Manager, logger *slog.Logger, win xproto.Window) {
	if !conn.IsNormalWindow(win) {
		xwindow.New(conn.XUtil, win).Map()
		return
	}
	if _, err := manager.Manage(platform.ClientID(win)); err != nil {
		logger.Warn("framing window failed, mapping it bare", "window", win, "error", err)
		xwindow.New(conn.XUtil, win).Map()
	}
}

// adopt frames the windows that were mapped before we started.
func adopt(conn *x11.Connection, manager *wm.Manager, logger *slog.Logger) {
	wins, err := conn.ManageableWindows()
	if err != nil {
		logger.Warn("listing existing windows failed", "error", err)
		return
	}
	for _, win := range wins {
		if _, err := manager.Manage(platform.ClientID(win)); err != nil {
			logger.Warn("adopting window failed", "window", win, "error", err)
		}
	}
	if len(wins) > 0 {
		logger.Info("adopted existing windows", "count", manager.Len())
	}
}

func reloadOnHangup(ctx context.Context, ctl *controller, logger *slog.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hup:
			logger.Info("SIGHUP received, reloading config")
			reloadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			_ = ctl.Reload(reloadCtx)
			cancel()
		}
	}
}
