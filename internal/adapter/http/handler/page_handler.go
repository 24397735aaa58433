package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/plastinin/docconverter/internal/adapter/http/dto"
	"github.com/plastinin/docconverter/internal/adapter/http/view"
	"go.uber.org/zap"
)

// PageHandler статические страницы
type PageHandler struct {
	renderer Renderer
	index    *dto.IndexPage
	privacy  *dto.PrivacyPage
	logger   *zap.Logger
}

// NewPageHandler создаёт новый PageHandler
func NewPageHandler(renderer Renderer, maxFiles int, maxFileSize int64, artifactTTL time.Duration, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		index:    dto.NewIndexPage(maxFiles, maxFileSize),
		privacy:  &dto.PrivacyPage{RetentionHint: humanDuration(artifactTTL)},
		logger:   logger,
	}
}

// Index форма загрузки
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, view.PageIndex, h.index)
}

// Privacy политика конфиденциальности
// GET /privacy
func (h *PageHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, view.PagePrivacy, h.privacy)
}

// NotFound страница для неизвестных путей
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, view.PageError, &dto.ErrorPage{Message: "Page not found."})
}

func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data any) {
	if err := h.renderer.Render(w, status, page, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
	}
}

// humanDuration "1 hour", "90 minutes"
func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	}
	return plural(int(d/time.Second), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
