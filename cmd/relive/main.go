// Package main is the entry point for the relive viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/relive/internal/config"
	"github.com/Faultbox/relive/internal/engine/camera"
	"github.com/Faultbox/relive/internal/engine/input"
	"github.com/Faultbox/relive/internal/engine/window"
	"github.com/Faultbox/relive/internal/loader"
	"github.com/Faultbox/relive/internal/logger"
	"github.com/Faultbox/relive/internal/remote"
	"github.com/Faultbox/relive/internal/viewport"
)

const title = "relive"

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== relive ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	opts, err := viewport.FromConfig(cfg)
	if err != nil {
		return err
	}

	win, err := window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Shadows:    cfg.Graphics.Shadows,
	}, logger.Named("window"))
	if err != nil {
		return err
	}
	defer win.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ld := loader.New(loaderConfig(cfg.Loader), logger.Named("loader"))
	ctrl := viewport.New(ld, opts, statusCallbacks(win), logger.Named("viewport"))

	if cfg.Remote.Listen != "" {
		hub := remote.NewHub(ctrl, logger.Named("remote"))
		ctrl.SetCallbacks(hub.Callbacks(statusCallbacks(win)))
		go func() {
			if err := hub.Serve(ctx, cfg.Remote.Listen); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("remote bridge stopped", zap.Error(err))
			}
		}()
	}
	if cfg.Remote.SerialPort != "" {
		imu := remote.NewIMU(cfg.Remote.SerialPort, cfg.Remote.BaudRate, ctrl, logger.Named("imu"))
		go imu.Run(ctx)
	}

	if err := ctrl.Attach(win); err != nil {
		return err
	}
	defer ctrl.Detach()

	unsubscribe := win.Subscribe(input.ListenKeyboard, func(ev input.Event) {
		if ev.Type == input.EventKeyDown && !ev.Repeat {
			handleKey(win, ctrl, ev.Key)
		}
	})
	defer unsubscribe()

	// Interrupts arrive off the UI thread.
	go func() {
		<-ctx.Done()
		ctrl.Enqueue(win.Stop)
	}()

	if cfg.Viewport.Mesh != "" {
		if err := ctrl.LoadMesh(cfg.Viewport.Mesh); err != nil {
			logger.Warn("startup mesh", zap.Error(err))
		}
	}

	win.Run()
	return nil
}

func loaderConfig(c config.LoaderConfig) loader.Config {
	lc := loader.DefaultConfig()
	lc.BasePath = c.BasePath
	lc.StagingDir = c.StagingDir
	if c.Timeout > 0 {
		lc.Timeout = c.Timeout
	}
	if c.UserAgent != "" {
		lc.UserAgent = c.UserAgent
	}
	lc.MaxTextureSize = c.MaxTextureSize
	return lc
}

// statusCallbacks mirror load progress in the window title.
func statusCallbacks(win *window.Window) viewport.Callbacks {
	return viewport.Callbacks{
		OnProgress: func(p float64) {
			win.SetTitle(fmt.Sprintf("%s: loading %.0f%%", title, p))
		},
		OnError: func(msg string) {
			logger.Error("mesh load failed", zap.String("error", msg))
			win.SetTitle(title + ": load failed")
		},
		OnComplete: func() {
			win.SetTitle(title)
		},
	}
}

func handleKey(win *window.Window, ctrl *viewport.Controller, key input.Key) {
	var err error
	switch key {
	case input.KeyEscape:
		win.Stop()
	case input.Key1:
		err = ctrl.SetInteractionMode(camera.ModeOrbit)
	case input.Key2:
		err = ctrl.SetInteractionMode(camera.ModePan)
	case input.KeyP:
		mode := camera.ModePan
		if ctrl.Session().Interaction().Mode == camera.ModePan {
			mode = camera.ModeOrbit
		}
		err = ctrl.SetInteractionMode(mode)
	case input.KeyB:
		var shown bool
		if shown, err = ctrl.ToggleBounds(); err == nil {
			logger.Debug("bounds overlay", zap.Bool("shown", shown))
		}
	case input.KeyO:
		openMeshDialog(ctrl)
	case input.KeyR:
		err = ctrl.ResetView()
	case input.KeyF12:
		_, err = ctrl.Screenshot("")
	}
	if err != nil {
		logger.Warn("key action failed", zap.Stringer("key", key), zap.Error(err))
	}
}

// openMeshDialog asks for a mesh file without blocking the frame loop. The
// choice is loaded on the UI thread.
func openMeshDialog(ctrl *viewport.Controller) {
	go func() {
		path, err := dialog.File().
			Filter("OBJ Meshes", "obj").
			Filter("All Files", "*").
			Title("Open Mesh").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				logger.Warn("file dialog", zap.Error(err))
			}
			return
		}
		ctrl.Enqueue(func() {
			if err := ctrl.LoadMesh(path); err != nil {
				logger.Warn("open mesh", zap.Error(err))
			}
		})
	}()
}
