// Package server wires the configured store, the services and the HTTP and
// gRPC health servers, and runs them until a signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dmitrijs2005/docblog/internal/logging"
	"github.com/dmitrijs2005/docblog/internal/server/blobstore"
	"github.com/dmitrijs2005/docblog/internal/server/config"
	"github.com/dmitrijs2005/docblog/internal/server/httpapi"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docblog/internal/server/services"

	gs "github.com/dmitrijs2005/docblog/internal/server/grpc"
)

const storeCloseTimeout = 5 * time.Second

// ErrFatal is returned by Run when a server stopped on its own.
var ErrFatal = errors.New("server stopped after a fatal error")

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	http   *httpapi.Server
	health *gs.HealthServer
}

// NewApp connects to the store and builds the servers. It fails fast when
// the store cannot be reached.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, !c.Production)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := repomanager.Open(ctx, c.DatabaseDSN, c.StoreConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var blobs blobstore.Store
	if c.S3Enabled {
		s3, err := blobstore.NewS3Store(ctx, c)
		if err != nil {
			_ = repos.Close(ctx)
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
		blobs = s3
	}

	us := services.NewUserService(repos, c, logger)
	bs := services.NewBlogService(repos, blobs, c, logger)

	app := &App{
		config: c,
		logger: logger,
		repos:  repos,
		http:   httpapi.NewServer(c, us, bs, repos, logger),
	}
	if c.HealthAddrGRPC != "" {
		app.health = gs.NewHealthServer(c.HealthAddrGRPC, repos, logger)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
// Shutdown happens in order: HTTP drain, health server stop, store close.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// The health server outlives the HTTP drain.
	healthCtx, stopHealth := context.WithCancel(context.WithoutCancel(ctx))
	defer stopHealth()

	var failed atomic.Bool
	var httpWG, healthWG sync.WaitGroup

	if app.health != nil {
		healthWG.Add(1)
		go func() {
			defer healthWG.Done()
			if err := app.health.Run(healthCtx); err != nil {
				app.logger.Error(ctx, "gRPC health server failed", "error", err)
				failed.Store(true)
				cancelFunc()
			}
		}()
	}

	httpWG.Add(1)
	go func() {
		defer httpWG.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, "HTTP server failed", "error", err)
			failed.Store(true)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	httpWG.Wait()
	stopHealth()
	healthWG.Wait()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeCloseTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		app.logger.Error(ctx, "store close", "error", err)
	}

	app.logger.Info(ctx, "App stopped")

	if failed.Load() {
		return ErrFatal
	}
	return nil
}
