package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator JSON API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}

	cmd.Flags().String("address", "", "listen address override, e.g. :8080")
	_ = a.v.BindPFlag("server.address", cmd.Flags().Lookup("address"))
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	conf := a.conf
	address := conf.Server.Address

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := calculator.FromConfig(conf, a.logger, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			a.logger.Warn("failed to close cache",
				zap.String("op", "main.serve"),
				zap.Error(err),
			)
		}
	}()

	var limiter *server.RateLimiter
	if conf.Server.RateLimit.Requests > 0 {
		limiter = server.NewRateLimiter(conf.Server.RateLimit.Requests, conf.Server.RateLimit.Window)
		defer limiter.Stop()
	}

	handler := server.NewHandler(server.Options{
		Logger:            a.logger,
		Service:           svc,
		Version:           version,
		MaxBodyBytes:      conf.MaxBodyBytes(),
		CORSOrigins:       conf.Server.CORSOrigins,
		RequestTimeout:    conf.Server.RequestTimeout,
		RateLimiter:       limiter,
		Registry:          registry,
		TrustProxyHeaders: conf.Server.TrustProxyHeaders,
	})

	a.logger.Info("starting loan-calculator server",
		zap.String("op", "main.serve"),
		zap.String("version", version),
		zap.String("address", address),
		zap.String("cacheBackend", conf.Cache.Backend),
		zap.Int64("maxBodyBytes", conf.MaxBodyBytes()),
	)

	return server.Serve(ctx, address, handler, conf.Server.ShutdownTimeout, a.logger)
}
