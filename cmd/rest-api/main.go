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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mirzahilmi/railx-envelope/internal/common/apperr"
	"github.com/mirzahilmi/railx-envelope/internal/common/config"
	"github.com/mirzahilmi/railx-envelope/internal/common/constant"
	"github.com/mirzahilmi/railx-envelope/internal/common/logger"
)

var (
	cfg config.Config
	api huma.API
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		port        uint32
		development bool
	)

	root := &cobra.Command{
		Use:          "rest-api",
		Short:        "RailX remittance envelope service",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the envelope REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.FromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("development") {
				cfg.IsDevelopment = development
			}
			logger.Setup(cfg.IsDevelopment)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return serve(cmd.Context())
		},
	}
	serveCmd.Flags().Uint32Var(&port, "port", 8080, "port to listen on, overrides PORT")
	serveCmd.Flags().BoolVar(&development, "development", false, "human readable debug logging, overrides DEVELOPMENT")

	root.AddCommand(serveCmd)
	return root
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	huma.NewError = apperr.NewHumaError

	router := chi.NewMux()
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)

	humaConfig := huma.DefaultConfig(constant.OAPI_TITLE, constant.OAPI_VERSION)
	humaConfig.Info.Description = constant.OAPI_SPEC_DESCRIPTION
	humaConfig.DocsPath = ""
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		constant.OAPI_SECURITY_SCHEME: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api = humachi.New(router, humaConfig)

	router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(constant.OAPI_SPEC_UI))
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	cleanup, err := setup(ctx, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Error().Err(err).Msg("failed to release resources")
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Uint32("port", cfg.Port).Msg("rest api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down rest api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
