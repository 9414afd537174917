package daemon

import (
	"context"
	"log/slog"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/frame"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/wm"
)

// frameManager is the part of wm.Manager the daemon drives.
type frameManager interface {
	Len() int
	Frames() []frame.State
	Close(id platform.ClientID) error
	ToggleMaximize(id platform.ClientID) error
	SetMaximized(id platform.ClientID, maximized bool) error
	Minimize(id platform.ClientID) error
	Apply(s wm.Settings)
	Reconcile() int
}

var _ frameManager = (*wm.Manager)(nil)

// controller serves IPC commands and client requests. Everything except
// the loader runs on the loop, so no field needs a lock.
type controller struct {
	loop    Caller
	manager frameManager
	logger  *slog.Logger

	display    string
	configPath string
	cfg        *config.Config
	// load reads the config from disk; apply installs it on the loop.
	load  func(path string) (*config.LoadResult, error)
	apply func(cfg *config.Config) error
}

var _ ipc.Handler = (*controller)(nil)

func (c *controller) Status(ctx context.Context) (ipc.StatusData, error) {
	var status ipc.StatusData
	err := c.loop.Call(ctx, func() error {
		status = ipc.StatusData{
			Display:    c.display,
			ConfigPath: c.configPath,
			FrameCount: c.manager.Len(),
			Animations: c.cfg.Animation.Enabled,
		}
		return nil
	})
	return status, err
}

func (c *controller) Frames(ctx context.Context) ([]frame.State, error) {
	var frames []frame.State
	err := c.loop.Call(ctx, func() error {
		frames = c.manager.Frames()
		return nil
	})
	return frames, err
}

func (c *controller) CloseFrame(ctx context.Context, id uint32) error {
	return c.loop.Call(ctx, func() error {
		return c.manager.Close(platform.ClientID(id))
	})
}

func (c *controller) ToggleMaximize(ctx context.Context, id uint32) error {
	return c.loop.Call(ctx, func() error {
		return c.manager.ToggleMaximize(platform.ClientID(id))
	})
}

func (c *controller) MinimizeFrame(ctx context.Context, id uint32) error {
	return c.loop.Call(ctx, func() error {
		return c.manager.Minimize(platform.ClientID(id))
	})
}

// Reload re-reads the config file and applies it. A config that fails to
// load or validate leaves the running settings untouched.
func (c *controller) Reload(ctx context.Context) error {
	res, err := c.load(c.configPath)
	if err != nil {
		c.logger.Error("config reload failed", "path", c.configPath, "error", err)
		return err
	}
	err = c.loop.Call(ctx, func() error {
		if err := c.apply(res.Config); err != nil {
			return err
		}
		c.cfg = res.Config
		c.logger.Info("config reloaded", "path", c.configPath, "files", len(res.Files))
		return nil
	})
	if err != nil {
		c.logger.Error("config reload failed", "path", c.configPath, "error", err)
	}
	return err
}

// handleRequest acts on a client message. It runs inside an X callback.
func (c *controller) handleRequest(id platform.ClientID, r platform.ClientRequest) {
	var err error
	switch r {
	case platform.RequestClose:
		err = c.manager.Close(id)
	case platform.RequestIconify:
		err = c.manager.Minimize(id)
	case platform.RequestMaximize:
		err = c.manager.SetMaximized(id, true)
	case platform.RequestRestore:
		err = c.manager.SetMaximized(id, false)
	case platform.RequestToggleMaximize:
		err = c.manager.ToggleMaximize(id)
	}
	if err != nil {
		c.logger.Debug("client request ignored", "client", id, "request", r.String(), "error", err)
	}
}
