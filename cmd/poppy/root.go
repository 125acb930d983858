package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/poppy/config"
	"github.com/Ramsey-B/poppy/internal/handlers"
	"github.com/Ramsey-B/poppy/pkg/logging"
	"github.com/Ramsey-B/poppy/pkg/startup"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func rootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false
	root := &cobra.Command{
		Use:           "poppy",
		Short:         "Movie catalog API, text to SQL search and UI",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "optional yaml, toml, json or dotenv settings file; the environment wins")

	root.AddCommand(apiCmd())
	root.AddCommand(uiCmd())
	root.AddCommand(seedCmd())
	return root
}

// runtime is what every subcommand needs before doing its own work.
type runtime struct {
	cfg         *config.Config
	logger      ectologger.Logger
	flush       func() error
	stopTracing func(context.Context) error
}

func newRuntime(ctx context.Context, cmd *cobra.Command, appName string) (*runtime, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if appName != "" {
		cfg.AppName = appName
	}

	logger, flush, err := logging.New(cfg.AppName, cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		return nil, err
	}

	stopTracing, err := tracing.Setup(ctx, cfg.AppName, cfg.OTLPEnabled, cfg.OTLP(), logger)
	if err != nil {
		_ = flush()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: logger, flush: flush, stopTracing: stopTracing}, nil
}

func (r *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.stopTracing(ctx); err != nil {
		r.logger.WithError(err).Warn("failed to flush traces")
	}
	_ = r.flush()
}

func (r *runtime) routerConfig() handlers.RouterConfig {
	return handlers.RouterConfig{
		AppName:           r.cfg.AppName,
		AllowOrigins:      r.cfg.AllowOrigins,
		AllowMethods:      r.cfg.AllowMethods,
		MetricsEnabled:    r.cfg.MetricsEnabled,
		ReadTimeout:       r.cfg.ReadTimeout(),
		WriteTimeout:      r.cfg.WriteTimeout(),
		IdleTimeout:       r.cfg.IdleTimeout(),
		ReadHeaderTimeout: r.cfg.ReadHeaderTimeout(),
		MaxHeaderBytes:    r.cfg.MaxHeaderBytes,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// serve starts the dependencies and blocks until a signal arrives or the
// server dies, then stops everything in reverse order.
func serve(ctx context.Context, s *startup.Startup, server *startup.ServerDependency, logger ectologger.Logger) error {
	if err := s.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.Stop(stopCtx)
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-server.Errors():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}
