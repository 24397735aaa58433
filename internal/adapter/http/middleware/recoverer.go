package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/docconverter/internal/adapter/http/dto"
	"go.uber.org/zap"
)

// PageRenderer рисует страницу ошибки
type PageRenderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// NewRecoverer как middleware.Recoverer, но отвечает HTML страницей
// и пишет панику в zap
func NewRecoverer(renderer PageRenderer, page string, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("Panic recovered",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)

				if r.Header.Get("Connection") == "Upgrade" {
					return
				}
				if err := renderer.Render(w, http.StatusInternalServerError, page,
					&dto.ErrorPage{Message: "Something went wrong while processing your request. Please try again."}); err != nil {
					logger.Error("Failed to render error page", zap.Error(err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
