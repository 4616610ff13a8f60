package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/apphost/pkg/observability"
	"github.com/platinummonkey/apphost/pkg/server"
)

func runServe(cmd *cobra.Command, opts *hostOptions) error {
	cfg, err := opts.resolve(cmd.Flags())
	if err != nil {
		return err
	}

	log, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tp, err := observability.InitTracing(ctx, cfg.Observability.OTel(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize tracing")
	}

	var metrics *observability.Metrics
	serverOpts := []server.Option{
		server.WithVersion(version),
		server.WithTracing(tp != nil),
	}
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
		serverOpts = append(serverOpts, server.WithMetrics(metrics, prometheus.DefaultGatherer))
	}

	reg, err := loadRegistry(ctx, cfg, log, metrics)
	if err != nil {
		log.WithError(err).Fatal("Failed to load plugins")
	}

	srv := server.New(reg, log, serverOpts...)
	if err := srv.MountPlugins(); err != nil {
		log.WithError(err).Fatal("Failed to mount plugins")
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(log, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.FlushTracing(tp)

	go func() {
		log.Infof("Starting apphost on %s with %d plugins", httpServer.Addr, reg.Count())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	return shutdown.WaitForShutdown(ctx)
}
