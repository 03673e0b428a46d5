// Package app implements the application layer for jig.
package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/jig/internal/adapters/composer"
	"go.trai.ch/jig/internal/adapters/devserver"
	"go.trai.ch/jig/internal/adapters/reload"
	"go.trai.ch/jig/internal/adapters/shell"
	"go.trai.ch/jig/internal/adapters/telemetry"
	"go.trai.ch/jig/internal/adapters/watcher"
	"go.trai.ch/jig/internal/build"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports"
	"go.trai.ch/jig/internal/engine/queue"
	"go.trai.ch/jig/internal/engine/router"
	"go.trai.ch/jig/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      ports.Builder
	watcher      ports.Watcher
	hub          *reload.Hub
	metrics      *telemetry.Metrics
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	builder ports.Builder,
	w ports.Watcher,
	hub *reload.Hub,
	metrics *telemetry.Metrics,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		builder:      builder,
		watcher:      w,
		hub:          hub,
		metrics:      metrics,
		logger:       log,
	}
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	// Env overrides the configured Jigsaw environment.
	Env string
	// Listen overrides the configured dev server address.
	Listen string
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// Env overrides the configured Jigsaw environment.
	Env string
}

// Serve builds the site, then rebuilds it and reloads connected browsers on every relevant
// change until ctx ends.
//
//nolint:cyclop,funlen // orchestration function
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	a.setJSON(opts.JSONLogs)

	// 1. Load the configuration
	cfg, cmd, err := a.prepare(opts.Env)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	globs, err := domain.NewGlobSet(cfg.Root, cfg.Files, cfg.Ignored)
	if err != nil {
		return zerr.Wrap(err, "failed to compile watch patterns")
	}

	// 2. Initialize telemetry and the build queue
	shutdownTelemetry := telemetry.Setup(a.metrics)
	defer func() {
		_ = shutdownTelemetry(context.WithoutCancel(ctx))
	}()

	q := newQueue(cfg)
	rt := router.New(globs, cfg.Policy, q, a.builder, cmd, a.hub, a.logger)

	// 3. Start the dev server
	srv := devserver.New(a.serverOptions(cfg), a.hub, a.metrics.Handler(), rt, a.logger)
	if err := srv.Start(); err != nil {
		return err
	}

	// 4. Watch for changes
	var events iter.Seq[ports.WatchEvent]
	if cfg.Refresh {
		if events, err = a.watch(ctx, cfg, globs); err != nil {
			_ = srv.Shutdown(context.WithoutCancel(ctx))
			return err
		}
		rt.SetFallback(func(path string) {
			srv.NotifyStylesheet(path)
		})
	}
	a.logger.Info("Dev server running at " + style.URL(srv.URL()))

	// 5. Initial build
	initial := q.Enqueue(func() error {
		return a.builder.Build(ctx, cmd)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := initial.Wait(gctx); err != nil {
			if gctx.Err() == nil {
				a.logger.Error(err)
			}
			return nil
		}
		a.logger.Info("Initial Jigsaw build completed.")
		return nil
	})

	g.Go(func() error {
		timer := time.NewTimer(domain.BannerDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			a.logger.Info(style.Banner(composer.JigsawVersion(cfg.Root), build.Version))
		case <-gctx.Done():
		}
		return nil
	})

	if events != nil {
		g.Go(func() error {
			rt.Watch(gctx, events)
			return nil
		})
	}

	// 6. Serve until ctx ends
	g.Go(func() error {
		if err := srv.Serve(); err != nil {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		var errs error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, domain.ErrServerFailed.Error()))
		}
		if cfg.Refresh {
			if err := a.watcher.Stop(); err != nil {
				errs = errors.Join(errs, zerr.Wrap(err, "failed to stop file watcher"))
			}
		}
		return errs
	})

	err = g.Wait()
	rt.Wait()
	return err
}

// Build runs a single site build.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	_, cmd, err := a.prepare(opts.Env)
	if err != nil {
		return err
	}

	shutdownTelemetry := telemetry.Setup(a.metrics)
	defer func() {
		_ = shutdownTelemetry(context.WithoutCancel(ctx))
	}()

	result := queue.New().Enqueue(func() error {
		return a.builder.Build(ctx, cmd)
	})
	if err := result.Wait(ctx); err != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}

	a.logger.Info("Jigsaw build completed.")
	return nil
}

// prepare loads the configuration, applies the environment override, and resolves the
// build command.
func (a *App) prepare(env string) (*domain.Config, *domain.BuildCommand, error) {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	if env != "" {
		cfg.Env = env
	}

	cmd, err := shell.ResolveCommand(cfg, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cmd, nil
}

// watch starts the watcher on the project and every pattern that reaches outside it.
func (a *App) watch(ctx context.Context, cfg *domain.Config, globs domain.GlobSet) (iter.Seq[ports.WatchEvent], error) {
	if err := a.watcher.Start(ctx, cfg.Root, cfg.Ignored); err != nil {
		return nil, err
	}
	if outside := outsideRoot(globs); len(outside) > 0 {
		if err := a.watcher.Add(outside); err != nil {
			_ = a.watcher.Stop()
			return nil, err
		}
	}

	events := a.watcher.Events()
	if cfg.Debounce > 0 {
		events = watcher.Debounce(ctx, events, cfg.Debounce)
	}
	return events, nil
}

func (a *App) serverOptions(cfg *domain.Config) devserver.Options {
	opts := devserver.Options{
		Listen: cfg.Listen,
		AppURL: cfg.AppURL,
	}
	if cfg.ServeOutput {
		opts.SiteDir = filepath.Join(cfg.Root, domain.SiteBuildDir(cfg.Env))
	}
	if cfg.HotFile != "" {
		opts.HotFile = cfg.HotFile
		if !filepath.IsAbs(opts.HotFile) {
			opts.HotFile = filepath.Join(cfg.Root, opts.HotFile)
		}
	}
	return opts
}

func (a *App) setJSON(enable bool) {
	if !enable {
		return
	}
	if switcher, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		switcher.SetJSON(true)
	} else {
		a.logger.Warn(fmt.Sprintf("logger %T does not support JSON output", a.logger))
	}
}

func newQueue(cfg *domain.Config) *queue.Queue {
	if cfg.Coalesce {
		return queue.New(queue.WithCoalescing())
	}
	return queue.New()
}

// outsideRoot returns the trigger patterns that are not below the project root.
func outsideRoot(globs domain.GlobSet) []string {
	prefix := strings.TrimSuffix(filepath.ToSlash(globs.Root()), "/") + "/"

	var outside []string
	for _, pattern := range globs.Included() {
		if !strings.HasPrefix(pattern, prefix) {
			outside = append(outside, pattern)
		}
	}
	return outside
}
