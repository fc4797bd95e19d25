package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"datalens/internal"
	"datalens/internal/config"
	"datalens/internal/container"
	"datalens/internal/errors"
)

func main() {
	cfgFile := flag.String("config", "", "config file (YAML)")
	flag.Parse()

	if err := run(*cfgFile); err != nil {
		internal.DefaultLogger.Error("server exited: %v", err)
		internal.DefaultLogger.Sync()
		os.Exit(1)
	}
}

func run(cfgFile string) error {
	appConfig, err := config.Load(cfgFile)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create application container")
	}
	defer appContainer.Shutdown(context.Background())

	gin.SetMode(appConfig.Server.GinMode)
	servers := []*http.Server{{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      appContainer.Handler(),
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}}
	if appConfig.Admin.Enabled {
		servers = append(servers, &http.Server{
			Addr:              ":" + appConfig.Admin.Port,
			Handler:           appContainer.AdminHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		logger.Info("listening on %s", srv.Addr)
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errc <- errors.Wrapf(err, "server on %s failed", srv.Addr)
			}
		}(srv)
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown of %s: %v", srv.Addr, err)
		}
	}
	return nil
}
