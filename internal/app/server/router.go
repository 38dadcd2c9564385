package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/chat"
	"hireflow/internal/domain/contacts"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/platform/config"
	"hireflow/internal/platform/metrics"
	"hireflow/internal/realtime"
	"hireflow/internal/transport/http/api"
	adminhandler "hireflow/internal/transport/http/handlers/admin"
	authhandler "hireflow/internal/transport/http/handlers/auth"
	chathandler "hireflow/internal/transport/http/handlers/chat"
	hrhandler "hireflow/internal/transport/http/handlers/hr"
	notificationshandler "hireflow/internal/transport/http/handlers/notifications"
	onboardinghandler "hireflow/internal/transport/http/handlers/onboarding"
	"hireflow/internal/transport/http/middleware"
)

// Pinger reports database readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP surface is assembled from.
type Deps struct {
	Config        config.Config
	DB            Pinger
	Metrics       *metrics.Collector
	Hub           *realtime.Hub
	Upgrader      *websocket.Upgrader
	Auth          *auth.Service
	Accounts      *accounts.Service
	Onboarding    *onboarding.Service
	Chat          *chat.Service
	Contacts      *contacts.Resolver
	Notifications *notifications.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Upgrader == nil {
		d.Upgrader = realtime.NewUpgrader(cfg.AllowedOrigins)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(d.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, multipartLimit(cfg)))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, d.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	if cfg.BlobBackend == config.BlobBackendLocal && cfg.BlobLocalDir != "" {
		router.Handle("/files/*", middleware.StoredFileHeaders(http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.BlobLocalDir)))))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(d.Auth, d.Accounts)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", authHandler.HandleMe)

			onboardinghandler.NewHandler(d.Onboarding, d.Accounts, d.Metrics).RegisterRoutes(r)
			hrhandler.NewHandler(d.Accounts, d.Onboarding, d.Chat, d.Notifications).RegisterRoutes(r)
			adminhandler.NewHandler(d.Accounts, d.Onboarding).RegisterRoutes(r)
			chathandler.NewHandler(d.Chat, d.Contacts, d.Hub, d.Upgrader, d.Metrics, cfg.ChatEnforceContacts).RegisterRoutes(r)
			notificationshandler.NewHandler(d.Notifications).RegisterRoutes(r)
		})
	})

	return router
}

// multipartLimit allows a handful of maximum-size files per upload request.
func multipartLimit(cfg config.Config) int64 {
	return cfg.MaxUploadBytes*8 + cfg.MaxBodyBytes
}
