package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Getabako/instagram-workflow-template/internal/state"
	"github.com/Getabako/instagram-workflow-template/internal/watcher"
	"github.com/Getabako/instagram-workflow-template/internal/web"
)

// Watcher delivers backgrounds as they land in the images folder.
type Watcher interface {
	Run(ctx context.Context) error
	Events() <-chan watcher.Event
}

type App struct {
	Store    *state.Store
	Pipeline *Pipeline
	Web      web.Server
	// Watcher switches the app from a single batch run to watch mode.
	Watcher Watcher
	Logger  Logger
	// Serve keeps the app running after a batch so the preview server stays up.
	Serve bool

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, pipeline *Pipeline, webServer web.Server) *App {
	return &App{Store: store, Pipeline: pipeline, Web: webServer, Logger: NoopLogger{}, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)

	if app.Web != nil {
		if err := app.Web.Start(ctx); err != nil {
			app.Logger.Errorf("app", "web server start error: %v", err)
			return err
		}
		defer app.Web.Stop()
	}

	if app.Watcher != nil {
		return app.watch(ctx)
	}

	if _, err := app.Pipeline.Run(ctx); err != nil {
		return err
	}
	if !app.Serve {
		return nil
	}
	return app.wait(ctx)
}

func (app *App) watch(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr <- app.Watcher.Run(ctx)
	}()
	app.Store.Begin(0, "")

	events := app.Watcher.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-app.exitCh:
			return err
		case ev, ok := <-events:
			if !ok {
				err := <-runErr
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			app.Store.SetCurrent(ev.Path)
			out, err := app.Pipeline.ComposeBlock(ev.Day, ev.Index, ev.Path)
			if err != nil {
				app.Store.Fail(err)
				app.Logger.Errorf("watch", "day %d block %d: %v", ev.Day, ev.Index, err)
				continue
			}
			app.Store.AddComposed()
			app.Logger.Infof("watch", "composed %s", out)
		}
	}
}

func (app *App) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-app.exitCh:
		return err
	}
}
