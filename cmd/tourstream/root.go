package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/tourstream/internal/analytics"
	"github.com/HerbHall/tourstream/internal/catalog"
	"github.com/HerbHall/tourstream/internal/config"
	"github.com/HerbHall/tourstream/internal/event"
	"github.com/HerbHall/tourstream/internal/store"
	pkgcatalog "github.com/HerbHall/tourstream/pkg/catalog"
)

var (
	configPath string
	dataPath   string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tourstream",
	Short: "TourStream - tour catalog service",
	Long: "TourStream serves a searchable tour catalog over HTTP and MCP, " +
		"and converts spreadsheet exports into catalog data sets.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Catalog data set (YAML or JSON); the embedded set when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataPath != "" {
		c.Viper().Set("catalog.path", dataPath)
	}
	if logLevel != "" {
		c.Viper().Set("log.level", logLevel)
	}
	cfg = c
	return nil
}

// newLogger builds the process logger. Both presets write to stderr, which
// keeps stdout free for command output and the MCP stdio transport.
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.GetBool("log.development") {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func openCatalog() *pkgcatalog.Catalog {
	if path := cfg.GetString("catalog.path"); path != "" {
		return pkgcatalog.NewFileCatalog(path)
	}
	return pkgcatalog.NewCatalog()
}

// newEngine opens the configured catalog and loads it eagerly so a broken
// data set fails the command instead of the first request.
func newEngine() (*catalog.Engine, error) {
	engine := catalog.NewEngine(openCatalog(), cfg.GetInt("catalog.cache_size"))
	if _, err := engine.Products(); err != nil {
		return nil, err
	}
	return engine, nil
}

// analyticsStack is the sink fan-out together with the resources behind it.
type analyticsStack struct {
	sink    analytics.Sink
	bus     *event.Bus
	journal *analytics.Journal
	store   *store.SQLiteStore
}

func newAnalytics(ctx context.Context, logger *zap.Logger, reg prometheus.Registerer) (*analyticsStack, error) {
	bus := event.NewBus(logger.Named("event"))
	a := &analyticsStack{bus: bus}

	sinks := []analytics.Sink{analytics.NewBus(bus)}
	if cfg.GetBool("analytics.log") {
		sinks = append(sinks, analytics.NewLogger(logger.Named("analytics")))
	}
	if cfg.GetBool("analytics.metrics") && reg != nil {
		m, err := analytics.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("analytics metrics: %w", err)
		}
		sinks = append(sinks, m)
	}
	a.sink = analytics.Combine(sinks...)

	if dsn := cfg.GetString("analytics.journal_dsn"); dsn != "" {
		st, err := store.New(dsn)
		if err != nil {
			return nil, err
		}
		j, err := analytics.NewJournal(ctx, st, logger.Named("journal"))
		if err != nil {
			st.Close()
			return nil, err
		}
		j.Attach(bus)
		a.store, a.journal = st, j
	}
	return a, nil
}

// Close drains in-flight events and closes the journal database.
func (a *analyticsStack) Close() error {
	a.bus.Wait()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
