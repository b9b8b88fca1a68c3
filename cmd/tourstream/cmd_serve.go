package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/HerbHall/tourstream/internal/analytics"
	"github.com/HerbHall/tourstream/internal/catalog"
	"github.com/HerbHall/tourstream/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from server.host and server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("TourStream server starting")

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		zap.Int("products", engine.Catalog().Len()),
		zap.String("path", cfg.GetString("catalog.path")),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stack, err := newAnalytics(ctx, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Error("analytics close error", zap.Error(err))
		}
	}()

	registrars := []server.RouteRegistrar{
		catalog.NewHandler(engine, stack.sink, logger.Named("catalog"),
			catalog.WithVocabulary(cfg.GetStringSlice("catalog.locations"), cfg.GetStringSlice("catalog.categories"))),
	}
	if stack.journal != nil {
		registrars = append(registrars, analytics.NewHandler(stack.journal, logger.Named("analytics")))
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = net.JoinHostPort(cfg.GetString("server.host"), strconv.Itoa(cfg.GetInt("server.port")))
	}
	srv, err := server.New(server.Options{
		Addr:         addr,
		ReadTimeout:  cfg.GetDuration("server.read_timeout"),
		WriteTimeout: cfg.GetDuration("server.write_timeout"),
		RateLimit:    rate.Limit(cfg.GetFloat64("server.rate_limit.rps")),
		Burst:        cfg.GetInt("server.rate_limit.burst"),
		Registry:     reg,
	}, logger.Named("server"), registrars...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested", zap.NamedError("cause", context.Cause(gctx)))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("TourStream server stopped")
	return nil
}
