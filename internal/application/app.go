package application

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/warehouse-management/warehouse/internal/application/autowire"
	"github.com/warehouse-management/warehouse/internal/application/config"
	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
	"github.com/warehouse-management/warehouse/internal/application/hooks"
	"github.com/warehouse-management/warehouse/internal/application/registry"
)

type App struct {
	container        *core.Container
	lifecycleManager *core.LifecycleManager
	configManager    *config.ConfigManager

	pluginErr error

	bootOnce sync.Once
	bootErr  error

	shutdownTimeout time.Duration
}

func NewApp(env string, configPath string) *App {
	abs := configPath
	if p, err := filepath.Abs(configPath); err == nil {
		abs = p
	}
	container := core.NewContainer()
	// the global manager carries the default log hooks
	lm := core.NewLifecycleManagerWithManager(container, hooks.GetGlobalHookManager())
	return &App{
		configManager:    config.NewConfigManager(env, abs),
		container:        container,
		lifecycleManager: lm,
		shutdownTimeout:  30 * time.Second,
	}
}

// Plugin registers a prebuilt component. It takes precedence over a
// registry builder of the same name. Errors surface from Run.
func (app *App) Plugin(comp core.Component) *App {
	if app.pluginErr != nil {
		return app
	}
	if comp == nil {
		app.pluginErr = fmt.Errorf("plugin component is nil")
		return app
	}
	if err := app.container.Register(comp.Name(), comp); err != nil {
		app.pluginErr = fmt.Errorf("register plugin %s: %w", comp.Name(), err)
	}
	return app
}

// SetBizConfig hands a pointer to the config manager; call before Run.
func (app *App) SetBizConfig(b any) *App {
	app.configManager.SetBizConfig(b)
	return app
}

func (app *App) SetShutdownTimeout(d time.Duration) { app.shutdownTimeout = d }

func (app *App) boot() error {
	app.bootOnce.Do(func() {
		if app.pluginErr != nil {
			app.bootErr = app.pluginErr
			return
		}
		if err := app.configManager.LoadConfig(); err != nil {
			app.bootErr = fmt.Errorf("load config failed: %w", err)
			return
		}
		if err := registry.BuildAndRegisterAll(app.configManager.GetConfig(), app.container); err != nil {
			app.bootErr = fmt.Errorf("register components failed: %w", err)
			return
		}
		if err := autowire.InjectAll(app.container); err != nil {
			app.bootErr = err
		}
	})
	return app.bootErr
}

func (app *App) GetComponent(name string) (core.Component, error) {
	return app.container.Resolve(name)
}

func (app *App) Container() *core.Container { return app.container }

func (app *App) GetConfig() *config.AppConfig {
	if app.configManager == nil {
		return nil
	}
	return app.configManager.GetConfig()
}

func (app *App) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return app.lifecycleManager.AddHook(name, phase, fn, priority)
}

// Run blocks until SIGINT/SIGTERM and returns after every component stopped.
// Enhanced mode (second signal or timeout forces exit, Windows console
// events) is the default on Windows and can be toggled with
// WAREHOUSE_FORCE_ENHANCED / WAREHOUSE_DISABLE_ENHANCED.
func (app *App) Run() error {
	if app.shouldUseEnhanced() {
		return app.runEnhanced()
	}
	return app.runBasic()
}

func (app *App) runBasic() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunWithContext(ctx)
}

func (app *App) runEnhanced() error {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		signal.Stop(sigCh)
		cancel()
	}()

	if runtime.GOOS == "windows" {
		core.InstallWindowsCtrlHandler(cancel, app.shutdownTimeout)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- app.RunWithContext(ctx) }()

	forceExit := func(reason string) {
		if _, disable := os.LookupEnv(consts.ENV_DISABLE_FORCE_EXIT); disable {
			log.Printf("[graceful] force exit suppressed (%s)", reason)
			return
		}
		exitCode := 1
		if v := os.Getenv(consts.ENV_FORCE_EXIT_CODE); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				exitCode = n
			}
		}
		log.Printf("[graceful] forcing process exit (code=%d) reason=%s", exitCode, reason)
		os.Exit(exitCode)
	}

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received signal %s, initiating graceful shutdown (timeout %s)...", sig, app.shutdownTimeout)
		timer := time.AfterFunc(app.shutdownTimeout, func() { forceExit("graceful-timeout") })
		defer timer.Stop()
		done := make(chan struct{})
		defer close(done)
		go watchSecondSignal(sigCh, done, func() { forceExit("second-signal") })
		cancel()
		return <-errCh
	}
}

// watchSecondSignal calls onSignal if another signal arrives before done is
// closed. signal.Stop never closes sigCh, so done is what ends the watch.
func watchSecondSignal(sigCh <-chan os.Signal, done <-chan struct{}, onSignal func()) {
	select {
	case <-sigCh:
		onSignal()
	case <-done:
	}
}

func (app *App) shouldUseEnhanced() bool {
	if _, off := os.LookupEnv(consts.ENV_DISABLE_ENHANCED); off {
		return false
	}
	if _, on := os.LookupEnv(consts.ENV_FORCE_ENHANCED); on {
		return true
	}
	return runtime.GOOS == "windows"
}

// RunWithContext starts components, blocks until ctx is done, then shuts
// down gracefully. A start failure is returned after the rollback.
func (app *App) RunWithContext(ctx context.Context) error {
	if err := app.boot(); err != nil {
		return err
	}
	if err := app.lifecycleManager.StartAll(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	app.lifecycleManager.StopAll(context.Background())
	return nil
}

func (app *App) Shutdown(ctx context.Context) {
	app.lifecycleManager.StopAll(ctx)
}
