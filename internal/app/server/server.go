package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/chat"
	"hireflow/internal/domain/contacts"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/platform/blob"
	"hireflow/internal/platform/config"
	"hireflow/internal/platform/db"
	"hireflow/internal/platform/email"
	"hireflow/internal/platform/jobs"
	"hireflow/internal/platform/metrics"
	"hireflow/internal/realtime"
	"hireflow/internal/requestctx"
)

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
	Hub    *realtime.Hub

	closers []func() error
}

// New connects the database, prepares the schema and assembles every service
// behind the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool}
	app.closers = append(app.closers, func() error { pool.Close(); return nil })

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	blobs, err := app.openBlobStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	collector := metrics.New()
	hub := realtime.NewHub()
	hub.SetObserver(collector)
	if cfg.RedisAddr != "" {
		bus, err := realtime.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis bus: %w", err)
		}
		app.closers = append(app.closers, bus.Close)
		if err := hub.AttachBus(context.WithoutCancel(ctx), bus); err != nil {
			app.Close()
			return nil, fmt.Errorf("redis bus: %w", err)
		}
	}
	app.Hub = hub

	accountStore := accounts.NewStore(pool)
	accountsSvc := accounts.NewService(accountStore)

	notificationsSvc := notifications.New(notifications.NewStore(pool), nil, hub)
	if cfg.EmailEnabled {
		queue := jobs.New(256, 30*time.Second)
		queue.Start(context.WithoutCancel(ctx), 2)
		app.closers = append(app.closers, queue.Stop)
		notificationsSvc.Mailer = email.New(cfg)
		notificationsSvc.DefaultFrom = cfg.EmailFrom
		notificationsSvc.Background = queue
	}

	onboardingSvc := onboarding.NewService(onboarding.NewStore(pool), blobs,
		onboarding.WithNotifier(notificationsSvc),
		onboarding.WithFolder(cfg.BlobFolder),
		onboarding.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)

	app.Router = NewRouter(Deps{
		Config:        cfg,
		DB:            pool,
		Metrics:       collector,
		Hub:           hub,
		Auth:          auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL),
		Accounts:      accountsSvc,
		Onboarding:    onboardingSvc,
		Chat:          chat.NewService(chat.NewStore(pool), hub),
		Contacts:      contacts.NewResolver(accountStore),
		Notifications: notificationsSvc,
	})
	return app, nil
}

func (a *App) openBlobStore(ctx context.Context) (blob.Gateway, error) {
	switch a.Config.BlobBackend {
	case config.BlobBackendGCS:
		gcs, err := blob.NewGCS(ctx, blob.GCSConfig{
			Bucket:          a.Config.GCSBucket,
			CredentialsFile: a.Config.GCSCredentialsFile,
			EmulatorHost:    a.Config.GCSEmulatorHost,
			PublicBaseURL:   a.Config.BlobPublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		a.closers = append(a.closers, gcs.Close)
		return gcs, nil
	default:
		base := a.Config.BlobPublicBaseURL
		if base == "" {
			base = "http://localhost" + a.Config.Addr
		}
		local, err := blob.NewLocal(a.Config.BlobLocalDir, base)
		if err != nil {
			return nil, fmt.Errorf("local blob store: %w", err)
		}
		return local, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}

func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(requestctx.NewLogHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("hireflow server listening", "addr", cfg.Addr, "env", cfg.Environment, "blobBackend", cfg.BlobBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown failed", "err", err)
		}
	}
}
