package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/docconverter/internal/adapter/http/handler"
	httpmiddleware "github.com/plastinin/docconverter/internal/adapter/http/middleware"
	"github.com/plastinin/docconverter/internal/adapter/http/view"
	"go.uber.org/zap"
)

// Handlers обработчики HTTP поверхности
type Handlers struct {
	Pages    *handler.PageHandler
	Convert  *handler.ConvertHandler
	Download *handler.DownloadHandler
	Health   *handler.HealthHandler
}

// NewRouter создаёт и настраивает HTTP роутер.
// trustProxy включает разбор X-Forwarded-For и X-Real-IP; без него
// лимит запросов считается по адресу соединения.
func NewRouter(
	h Handlers,
	limiter *httpmiddleware.RateLimiter,
	renderer *view.Renderer,
	trustProxy bool,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(httpmiddleware.NewLoggingMiddleware(logger))
	r.Use(httpmiddleware.NewRecoverer(renderer, view.PageError, logger))
	r.Use(middleware.Compress(5))

	// Health check (вне лимита запросов)
	r.Get("/health", h.Health.Check)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Get("/", h.Pages.Index)
		r.Get("/privacy", h.Pages.Privacy)
		r.Post("/convert", h.Convert.Convert)
		r.Get("/download/{filename}", h.Download.Download)

		r.NotFound(h.Pages.NotFound)
	})

	return r
}
