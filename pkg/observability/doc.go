// Package observability provides logging, Prometheus metrics, OpenTelemetry
// tracing, health checks and graceful shutdown for the host.
//
// # Logging
//
//	logger, err := observability.NewLogger("info", observability.FormatJSON, os.Stdout)
//	logger.WithField("plugin", "test-plugin").Info("Mounted plugin")
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(reg)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	router.Handle("/metrics", observability.MetricsHandler(reg))
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version)
//	checker.AddCheck("plugins", func(ctx context.Context) error { ... })
//
// # OpenTelemetry
//
//	tp, err := observability.InitTracing(ctx, cfg, logger)
//	handler = observability.TraceHandler(handler, "apphost")
//	defer observability.ShutdownTracing(ctx, tp)
package observability
