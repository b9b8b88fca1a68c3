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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/tourstream/internal/mcptools"
	"github.com/HerbHall/tourstream/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server (stdio, or streamable HTTP with --http)",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().String("http", "", "Serve MCP over HTTP on this address instead of stdio (default from mcp.http_addr)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	stack, err := newAnalytics(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Error("analytics close error", zap.Error(err))
		}
	}()

	tools := mcptools.NewTools(engine, stack.sink, logger.Named("mcp"),
		cfg.GetStringSlice("catalog.locations"), cfg.GetStringSlice("catalog.categories"))
	srv := mcptools.NewServer(tools, version.Short())

	addr, _ := cmd.Flags().GetString("http")
	if addr == "" {
		addr = cfg.GetString("mcp.http_addr")
	}
	if addr == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Starting TourStream MCP server on stdio...")
		return mcptools.Serve(ctx, srv)
	}
	return serveMCPHTTP(ctx, logger, addr, mcptools.HTTPHandler(srv, cfg.GetString("mcp.api_key")))
}

func serveMCPHTTP(ctx context.Context, logger *zap.Logger, addr string, h http.Handler) error {
	hs := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.Error("MCP HTTP shutdown error", zap.Error(err))
		}
	}()

	logger.Info("TourStream MCP HTTP server listening", zap.String("addr", addr))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
