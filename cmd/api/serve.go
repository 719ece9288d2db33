package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crowdfund-platform/internal/auth"
	"crowdfund-platform/internal/config"
	"crowdfund-platform/internal/documents"
	"crowdfund-platform/internal/fundraising"
	"crowdfund-platform/internal/handlers"
	"crowdfund-platform/internal/logger"
	"crowdfund-platform/internal/payments"
	"crowdfund-platform/internal/storage"
	"crowdfund-platform/internal/validation"
	ws "crowdfund-platform/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// app is the state shared by every command.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store *storage.Store
}

func bootstrap(ctx context.Context, dir string) (*app, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Error("cannot connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
		return nil, err
	}
	log.Info("connected to database", zap.String("driver", cfg.DBDriver))

	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.log.Sync()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the live donation feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(cmd.Context(), configDir)
			if err != nil {
				return err
			}
			defer app.close()
			return app.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	validator := validation.New(time.Now)
	hub := ws.NewHub(a.log.Named("hub"))

	authService := auth.NewService(a.store, validator, a.log.Named("auth"), auth.Options{
		Secret: a.cfg.JWTSecret,
		TTL:    a.cfg.TokenTTL,
	})
	fundraisingService := fundraising.NewService(a.store, validator, a.log.Named("fundraising"),
		fundraising.WithNotifier(hub))

	docStore, uploadDir, err := a.documentStore()
	if err != nil {
		return err
	}
	documentService := documents.NewService(docStore, a.cfg.MaxUploadBytes, a.log.Named("documents"))

	deps := handlers.Deps{
		Auth:           authService,
		Fundraising:    fundraisingService,
		Documents:      documentService,
		Hub:            hub,
		Log:            a.log,
		AllowedOrigins: a.cfg.AllowedOrigins,
		TrendingLimit:  a.cfg.TrendingLimit,
		UploadDir:      uploadDir,
		Ping:           a.store.Ping,
	}
	if a.cfg.PaymentsEnabled() {
		gateway := payments.NewMidtransGateway(a.cfg.MidtransServerKey, a.cfg.MidtransProduction)
		deps.Payments = payments.NewService(gateway, a.store, fundraisingService, a.log.Named("payments"))
		a.log.Info("midtrans payments enabled", zap.Bool("production", a.cfg.MidtransProduction))
	}

	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		a.log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// documentStore picks Supabase Storage when configured, local disk otherwise.
// The returned directory is non-empty only for local disk.
func (a *app) documentStore() (documents.Store, string, error) {
	if a.cfg.SupabaseEnabled() {
		store, err := documents.NewSupabaseStore(a.cfg.SupabaseURL, a.cfg.SupabaseKey, a.cfg.SupabaseBucket)
		if err != nil {
			return nil, "", err
		}
		a.log.Info("documents stored in supabase", zap.String("bucket", a.cfg.SupabaseBucket))
		return store, "", nil
	}

	store, err := documents.NewFileStore(a.cfg.UploadDir, a.cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	a.log.Info("documents stored on local disk", zap.String("dir", store.BasePath()))
	return store, store.BasePath(), nil
}
