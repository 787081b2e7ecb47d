package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	contacthandler "phonebook/internal/contact/handler"
	contactmetrics "phonebook/internal/contact/metrics"
	contactservice "phonebook/internal/contact/service"
	contactstore "phonebook/internal/contact/store"
	"phonebook/internal/platform/config"
	"phonebook/internal/platform/httpserver"
	"phonebook/internal/platform/logger"
	"phonebook/internal/platform/metrics"
	httptransport "phonebook/internal/transport/http"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var configFile string
	cmd := &cobra.Command{
		Use:           "phonebook",
		Short:         "Serve the phonebook HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				v.SetConfigFile(configFile)
			}
			cfg, err := config.Load(v)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "configuration error:", err)
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			if err := run(cmd.Context(), cfg, log); err != nil {
				log.Error("phonebook stopped", "error", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "path to a config file (yaml, json or toml)")
	flags.String("port", "", "HTTP listen port (env PORT)")
	flags.String("store-url", "", "record store URL: memory://, postgres://, mongodb://, redis:// (env PHONEBOOK_STORE_URL or MONGODB_URI)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.Bool("seed", false, "seed the in-memory store with sample contacts")
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("store_url", flags.Lookup("store-url"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("seed", flags.Lookup("seed"))
	return cmd
}

// run wires dependencies and serves until ctx is cancelled or a signal arrives.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, _ := cfg.Backend()
	store, err := contactstore.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", backend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("closing store", "error", err)
		}
	}()
	log.Info("connected to record store", "backend", backend)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := contactservice.New(store,
		contactservice.WithLogger(log),
		contactservice.WithMetrics(contactmetrics.New(reg)),
	)
	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		Health:         svc,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}, contacthandler.New(svc, log))

	srv := httpserver.New(cfg.Server, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("phonebook listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
