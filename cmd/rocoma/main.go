// rocoma is the controller-manager server: it loads the parameter store,
// resolves the configured controllers through the plugin registry, and
// runs the tick loop behind an HTTP + WebSocket surface.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/matthewgan/rocoma/internal/config"
	rlog "github.com/matthewgan/rocoma/internal/log"
	"github.com/matthewgan/rocoma/internal/setup"
	"github.com/matthewgan/rocoma/pkg/api"
	"github.com/matthewgan/rocoma/pkg/controllers"
	"github.com/matthewgan/rocoma/pkg/notify"
	"github.com/matthewgan/rocoma/pkg/registry"
)

func main() {
	configPath := flag.String("config", "config/controller_manager.yaml", "path to the controller_manager parameter store")
	addr := flag.String("addr", ":8090", "HTTP/WebSocket listen address")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	rlog.Init(*logLevel)
	log := rlog.L()

	cfg, err := config.Load(*configPath, log)
	if err != nil {
		logFatal(log, "config load failed", err)
	}

	reg := registry.New()
	controllers.Register(reg)

	bus := notify.New()

	mgr, err := setup.Build(cfg, reg, bus, log)
	if err != nil {
		// SetupError.FailproofMissing and friends are fatal: nothing can
		// safely tick without a manager.
		logFatal(log, "manager setup failed", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mgr.Start(ctx)
	mgr.StartTicks(ctx)
	defer mgr.Stop()

	srv := api.New(mgr, bus, log)
	go func() {
		if err := srv.Listen(*addr); err != nil {
			log.Error("api server stopped", "error", err)
		}
	}()

	log.Info("rocoma controller-manager running", "addr", *addr, "failproof", cfg.FailproofController, "time_step", cfg.TimeStep)

	<-ctx.Done()
	log.Info("shutting down")
	_ = srv.Shutdown()
}

func logFatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
