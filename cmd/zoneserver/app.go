// Package main boots the zone server's module runtime: the component
// broker, the module manager, and the read-only admin HTTP surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigamon-dev/SubspaceServer-sub008/broker"
	"github.com/gigamon-dev/SubspaceServer-sub008/config"
	"github.com/gigamon-dev/SubspaceServer-sub008/httpapi"
	"github.com/gigamon-dev/SubspaceServer-sub008/logging"
	"github.com/gigamon-dev/SubspaceServer-sub008/metrics"
	"github.com/gigamon-dev/SubspaceServer-sub008/module"
	"github.com/gigamon-dev/SubspaceServer-sub008/modules/chat"
	"github.com/gigamon-dev/SubspaceServer-sub008/modules/clientsettings"
	"github.com/gigamon-dev/SubspaceServer-sub008/security"
	"github.com/gigamon-dev/SubspaceServer-sub008/slots"
	"github.com/gigamon-dev/SubspaceServer-sub008/zonedirectory"
)

// App wires the module runtime to an admin HTTP surface and owns the
// process lifecycle.
type App struct {
	cfg     *config.Config
	root    *broker.Broker
	manager *module.Manager
	metrics *metrics.Collector
	sandbox *security.Sandbox
	zones   *zonedirectory.Directory

	playerSlots *slots.Table
	server      *http.Server
}

// NewApp assembles the runtime and registers the built-in illustrative
// modules. Run loads only these built-in modules; it creates no arenas and
// loads no plug-in packages.
func NewApp(
	cfg *config.Config,
	root *broker.Broker,
	mgr *module.Manager,
	collector *metrics.Collector,
	sandbox *security.Sandbox,
	zones *zonedirectory.Directory,
) *App {
	root.SetMetrics(collector)
	mgr.SetMetrics(collector)

	a := &App{
		cfg:         cfg,
		root:        root,
		manager:     mgr,
		metrics:     collector,
		sandbox:     sandbox,
		zones:       zones,
		playerSlots: slots.NewTable(4096),
	}
	a.registerBuiltinModules()
	return a
}

func (a *App) registerBuiltinModules() {
	chatModule := chat.New(*a.cfg.Chat, a.playerSlots)
	a.manager.Register(module.Registration{
		Identity:    chatModule.Identity(),
		Description: "flood-controlled chat service",
		Instance:    chatModule,
	})

	settingsModule := clientsettings.New(a.playerSlots)
	a.manager.Register(module.Registration{
		Identity:    settingsModule.Identity(),
		Description: "per-player client settings",
		Instance:    settingsModule,
	})
}

// Run loads every registered module, starts the admin HTTP surface, and
// blocks until an interrupt signal arrives.
func (a *App) Run() error {
	ctx := context.Background()

	for _, name := range []string{"chat.Module", "clientsettings.Module"} {
		if err := a.manager.LoadModule(ctx, name); err != nil {
			return fmt.Errorf("zoneserver: loading %s: %w", name, err)
		}
	}
	if err := a.manager.DoPostLoad(ctx); err != nil {
		return fmt.Errorf("zoneserver: post-load: %w", err)
	}

	if a.zones != nil {
		if err := a.zones.Register(ctx, zonedirectory.Record{Name: "zone-primary"}); err != nil {
			logging.Warnf(ctx, "zoneserver: zone directory registration failed: %v", err)
		}
	}

	router := httpapi.NewRouter(a.manager, a.metrics)
	a.server = &http.Server{
		Addr:         ":8088",
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Infof(ctx, "zoneserver: admin surface listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf(ctx, "zoneserver: admin surface failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.shutdown(ctx)
}

func (a *App) shutdown(parent context.Context) error {
	logging.Infof(parent, "zoneserver: shutting down")

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		logging.Errorf(parent, "zoneserver: admin surface forced shutdown: %v", err)
	}

	if err := a.manager.DoPreUnload(ctx); err != nil {
		logging.Errorf(parent, "zoneserver: pre-unload: %v", err)
	}
	if err := a.manager.UnloadAll(ctx); err != nil {
		logging.Errorf(parent, "zoneserver: unload-all: %v", err)
	}

	a.metrics.Stop()
	logging.Infof(parent, "zoneserver: shutdown complete")
	return nil
}
