package handlers

import (
	"MyPass/internal/config"
	"MyPass/internal/events"
	"MyPass/internal/middleware"
	"MyPass/internal/service"
	"crypto/sha256"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	vault *service.VaultService,
	bus events.Bus,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	if bus == nil {
		bus = events.NewMemoryBus()
	}
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))
	if config.CSRFKey != "" {
		r.Use(csrfProtect(config, logger))
	}

	// Handlers
	userHandler := NewUserHandler(vault, logger, config)
	itemHandler := NewItemHandler(vault, bus, logger, config)
	recoveryHandler := NewRecoveryHandler(vault, logger, config)
	toolsHandler := NewToolsHandler(logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/logout", userHandler.Logout)
	r.Post("/api/user/test", userHandler.Status)

	// Recovery routes (без сессии)
	r.Get("/api/recovery/questions", recoveryHandler.Questions)
	r.Post("/api/recovery", recoveryHandler.Recover)
	r.Post("/api/recovery/reset", recoveryHandler.Reset)

	r.Post("/api/password/generate", toolsHandler.Generate)
	r.Get("/api/csrf", toolsHandler.CSRFToken)

	// Закрытые маршруты
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/api/user/password", userHandler.ChangePassword)

		r.Get("/api/items", itemHandler.List)
		r.Post("/api/items", itemHandler.Create)
		r.Get("/api/items/{id}", itemHandler.Get)
		r.Put("/api/items/{id}", itemHandler.Update)
		r.Delete("/api/items/{id}", itemHandler.Delete)
	})

	return &Handler{Router: r}
}

// csrfProtect включает gorilla/csrf. Без HTTPS запросы помечаются как plaintext,
// иначе библиотека требует Referer того же origin.
func csrfProtect(cfg *config.Config, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte(cfg.CSRFKey))
	protect := csrf.Protect(
		key[:],
		csrf.Secure(cfg.EnableHTTPS),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warnw("csrf check failed", "uri", r.URL.Path, "reason", csrf.FailureReason(r))
			http.Error(w, "forbidden", http.StatusForbidden)
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.EnableHTTPS {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}
}
