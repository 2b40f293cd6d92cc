package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ssl/cleanshot-cloud/api"
	"github.com/ssl/cleanshot-cloud/config"
	"github.com/ssl/cleanshot-cloud/info"
	"github.com/ssl/cleanshot-cloud/internal/blob"
	"github.com/ssl/cleanshot-cloud/internal/media"
	"github.com/ssl/cleanshot-cloud/probe"
	"github.com/ssl/cleanshot-cloud/querybuilder"
	"github.com/ssl/cleanshot-cloud/responder"
	"github.com/ssl/cleanshot-cloud/router"
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			return serve(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to read before the environment")
	return cmd
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
}

// application holds everything serve needs to start and stop.
type application struct {
	handler http.Handler
	conn    *querybuilder.Conn
}

func newApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	conn, err := querybuilder.NewConn(querybuilder.Credentials{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	}, querybuilder.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resp := responder.NewResponder(responder.WithLogger(logger))
	rt := router.NewRouter(router.WithResponder(resp), router.WithRouterLogger(logger))

	infoHandler := info.NewInfoHandler(
		info.WithInfoResponder(resp),
		info.WithTitle("CleanShot Cloud"),
		info.WithInfoProvider(func() any { return buildInfo() }),
		info.WithSwaggerProvider(func() ([]byte, error) { return api.JSON(ctx) }),
		info.WithReadinessChecks(
			probe.NewDBPingProbe("database", conn),
			probe.NewPingProbe("blob", store.Ping),
		),
	)

	// Fixed routes go first: media registers the "/@slug" catch-all.
	infoHandler.Register(rt)
	rt.Get("/metrics", router.Wrap(promhttp.Handler()))
	media.NewService(querybuilder.New(conn), store,
		media.WithResponder(resp),
		media.WithLogger(logger),
		media.WithUserFile(cfg.UserFile),
		media.WithPublicHost(cfg.PublicHost),
		media.WithMaxUploadSize(cfg.MaxUploadBytes),
	).Register(rt)

	opts := []router.Option{
		router.WithLogger(logger),
		router.WithConfig(router.Config{
			Timeout:         cfg.RequestTimeout,
			QuietdownRoutes: []string{"/info/healthz", "/info/readyz", "/metrics"},
			HideHeaders:     []string{"Authorization", "Cookie"},
			DefaultHeaders:  cfg.DefaultHeaders,
			CORS: router.CORSConfig{
				Origins: cfg.CORSOrigins,
				Methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				Headers: []string{"Content-Type", "Authorization"},
			},
		}),
	}
	if cfg.ValidateRequests {
		doc, err := api.Load(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, router.WithSwagger(doc))
	}

	return &application{handler: router.New(rt, opts...), conn: conn}, nil
}

func newBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	if cfg.Storage == config.StorageS3 {
		return blob.NewS3(ctx, blob.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	}
	return blob.NewFS(cfg.UploadsDir)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.conn.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "storage", cfg.Storage, "driver", cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
