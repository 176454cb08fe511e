package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/config"
	"storefront-admin/internal/database"
	custommiddleware "storefront-admin/internal/middleware"
	"storefront-admin/internal/repository"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"
	"storefront-admin/internal/staging"
	"storefront-admin/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the long-lived resources the server is built from
type Deps struct {
	// DB is nil when the activity log is kept in memory.
	DB       database.Service
	Redis    *redis.Client
	Backend  *backend.Client
	Staging  *staging.Store
	Activity repository.ActivityLogRepository
	Views    *transport.TemplateCache
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Deps
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	s.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           s.routes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	cfg := s.config
	logger := s.logger

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.SecurityHeaders)

	// Health check endpoint
	router.Get("/health", s.health)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(transport.StaticFS()))))

	// Initialize sessions and services
	sessions := session.NewManager(cfg.Session.Key, session.Options{
		Secure: cfg.Session.CookieSecure,
		Domain: cfg.Session.CookieDomain,
		MaxAge: cfg.Session.MaxAge,
	})
	catalog := service.NewCatalogService(s.deps.Backend, s.deps.Redis, cfg.Cache.CategoryTTL, logger)
	reports := service.NewReportService(s.deps.Backend, logger)

	// Initialize handlers
	pages := transport.NewPages(s.deps.Views, sessions, cfg.Server.Brand, logger)
	authHandler := transport.NewAuthHandler(pages, s.deps.Backend)
	reportHandler := transport.NewReportHandler(pages, reports)
	protected := []interface{ RegisterRoutes(chi.Router) }{
		transport.NewProductHandler(pages, s.deps.Backend, catalog, s.deps.Staging, cfg.Upload.MaxImages, cfg.Upload.MaxBytes),
		transport.NewCategoryHandler(pages, catalog, cfg.Upload.MaxBytes),
		transport.NewOrderHandler(pages, s.deps.Backend),
		transport.NewCustomerHandler(pages, s.deps.Backend),
		transport.NewContentHandler(pages, s.deps.Backend, cfg.Upload.MaxBytes),
		transport.NewSiteHandler(pages, s.deps.Backend, cfg.Upload.MaxBytes),
		transport.NewProfileHandler(pages, s.deps.Backend),
		reportHandler,
		transport.NewActivityHandler(pages, s.deps.Activity),
		transport.NewStagingHandler(s.deps.Staging),
	}

	limiter := custommiddleware.RateLimitMiddleware(s.deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.LoginAttempts,
		Window:            cfg.RateLimit.LoginWindow,
		KeyPrefix:         "storefront-admin:ratelimit:auth",
		OnLimit:           authHandler.TooManyAttempts,
	}, logger)

	router.Group(func(r chi.Router) {
		if !cfg.Session.CookieSecure {
			r.Use(plaintextHTTP)
		}
		r.Use(csrf.Protect(cfg.Session.CSRFKey,
			csrf.Secure(cfg.Session.CookieSecure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(csrfFailure(logger)),
		))

		// Register routes
		authHandler.RegisterRoutes(r, limiter)

		r.Route("/api", func(r chi.Router) {
			r.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))
			r.Use(custommiddleware.RequireSession(sessions, logger))
			reportHandler.RegisterAPIRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireSession(sessions, logger))
			r.Use(custommiddleware.RememberMenu(sessions, logger))
			r.Use(custommiddleware.ActivityLog(s.deps.Activity, logger))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/products", http.StatusSeeOther)
			})
			for _, h := range protected {
				h.RegisterRoutes(r)
			}
		})
	})

	return router
}

// plaintextHTTP lets the CSRF check accept http:// origins outside production.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("CSRF check failed",
			zap.String("path", r.URL.Path),
			zap.Error(csrf.FailureReason(r)),
		)
		http.Error(w, "This form has expired. Reload the page and try again.", http.StatusForbidden)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	code := http.StatusOK

	if s.deps.DB != nil {
		dbHealth := s.deps.DB.Health()
		status["database"] = dbHealth
		if dbHealth["status"] != "up" {
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		} else if version, err := database.SchemaVersion(s.deps.DB.DB()); err == nil {
			status["schema_version"] = version
		}
	} else {
		status["database"] = map[string]string{"status": "disabled"}
	}

	if s.deps.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		} else {
			status["redis"] = "up"
		}
	}

	custommiddleware.RespondWithJSON(w, code, status)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
