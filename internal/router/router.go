package router

import (
	"github.com/Totarae/TransferRedirect/internal/auth"
	"github.com/Totarae/TransferRedirect/internal/handlers"
	"github.com/Totarae/TransferRedirect/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, authService *auth.Auth, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие
	r.Use(authService.Middleware)               // Сессия в контексте

	r.Get("/", handler.Redirect)
	r.Get("/ping", handler.Ping)
	r.Post("/api/link", handler.CreateLink)
	r.Get("/api/key", handler.GetKey)
	r.Put("/api/key", handler.PutKey)
	r.Delete("/api/key", handler.DeleteKey)
	r.Get("/api/patterns", handler.ListPatterns)
	r.Post("/api/patterns", handler.AddPattern)
	r.Delete("/api/patterns", handler.DeletePatterns)
	r.Delete("/api/patterns/{index}", handler.DeletePattern)
	r.Get("/api/notifications", handler.Notifications)
	return r
}
