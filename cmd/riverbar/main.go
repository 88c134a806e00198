package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ItsNotGoodName/riverbar/internal/bar"
	"github.com/ItsNotGoodName/riverbar/internal/block"
	"github.com/ItsNotGoodName/riverbar/internal/build"
	"github.com/ItsNotGoodName/riverbar/internal/bus"
	"github.com/ItsNotGoodName/riverbar/internal/config"
	"github.com/ItsNotGoodName/riverbar/internal/control"
	"github.com/ItsNotGoodName/riverbar/internal/output"
	"github.com/ItsNotGoodName/riverbar/internal/render"
	"github.com/ItsNotGoodName/riverbar/internal/scheduler"
	"github.com/ItsNotGoodName/riverbar/internal/wayland"
	"github.com/ItsNotGoodName/riverbar/internal/x11"
	"github.com/ItsNotGoodName/riverbar/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug      bool   `doc:"enable debug"`
	Host       string `doc:"host of the control API"`
	Port       int    `doc:"port of the control API, 0 disables it" default:"0"`
	Config     string `doc:"config file" default:".riverbar.yaml"`
	DumpConfig bool   `doc:"print the loaded config and exit"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			return run(ctx, options)
		})
	})

	cli.Root().Version = build.Current.String()

	cli.Run()
}

// link is a display server connection that shows the bar.
type link interface {
	sutureext.Service
	Flush() error
}

func run(ctx context.Context, options *Options) error {
	configFilePath, err := filepath.Abs(options.Config)
	if err != nil {
		return err
	}

	store, err := config.NewStore(config.NewDriver(configFilePath))
	if err != nil {
		return err
	}

	cfg, err := store.Load()
	if err != nil {
		return err
	}

	if options.DumpConfig {
		pp.Println(cfg)
		return nil
	}

	theme, err := cfg.Theme()
	if err != nil {
		return err
	}

	font, err := render.LoadFont(cfg.Font.Path, cfg.Font.Size, cfg.Font.DPI)
	if err != nil {
		return err
	}

	blocks := block.Defaults()
	table, err := scheduler.NewTable(blocks)
	if err != nil {
		return err
	}
	cache := block.NewCache(blocks.Len())
	registry := output.NewRegistry(cfg.MaxOutputs)

	b := bar.New(registry, blocks, cache, bar.Options{
		Faces:  font,
		Theme:  theme,
		Layout: cfg.RenderLayout(),
	})

	var l link
	switch backend := backendFor(cfg.Backend); backend {
	case config.BackendWayland:
		l = wayland.New(b, wayland.Options{Title: cfg.Title, Layout: cfg.RenderLayout()})
	case config.BackendX11:
		l = x11.New(b, x11.Options{Title: cfg.Title, Layout: cfg.RenderLayout()})
	default:
		return fmt.Errorf("unknown backend: %s", backend)
	}

	updates := bus.NewHub[[]string]("blocks", 1)
	sched := scheduler.New(blocks, cache, scheduler.Options{
		Renderer: b,
		Flusher:  l,
		OnUpdate: updates.Broadcast,
	})

	slog.Info("Starting", "version", build.Current.String(), "backend", l.String(), "period", sched.Period(), "signals", table.IDs())

	cause := &sutureext.Cause{}
	super := sutureext.New("root")
	sutureext.Add(super, sutureext.NewFatalService(sched, cause))
	sutureext.Add(super, sutureext.NewFatalService(scheduler.NewSignals(table, sched), cause))
	sutureext.Add(super, sutureext.NewFatalService(l, cause))

	if options.Port > 0 {
		addr := net.JoinHostPort(options.Host, strconv.Itoa(options.Port))
		router := control.NewRouter(control.Controller{
			Blocks:  blocks,
			Cache:   cache,
			Table:   table,
			Sink:    sched,
			Outputs: b,
			Updates: updates,
		})
		sutureext.Add(super, sutureext.NewFatalService(control.NewServer(addr, router), cause))
		slog.Info("Serving control API", "address", addr)
	}

	if err := super.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Debug("Supervisor stopped", "error", err)
	}

	err = cause.Err()
	switch {
	case errors.Is(err, scheduler.ErrTerminated):
		slog.Info("exit: terminated")
		return nil
	case errors.Is(err, wayland.ErrQuit), errors.Is(err, x11.ErrQuit):
		slog.Info("exit: quit key pressed")
		return nil
	}
	return err
}

// backendFor resolves auto to the display server of the session.
func backendFor(backend string) string {
	if backend != config.BackendAuto {
		return backend
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return config.BackendWayland
	}
	return config.BackendX11
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
