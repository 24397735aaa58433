package handler

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/docconverter/internal/adapter/http/dto"
	"github.com/plastinin/docconverter/internal/adapter/http/view"
	"github.com/plastinin/docconverter/internal/domain"
	"go.uber.org/zap"
)

// Downloader выдаёт артефакты и планирует их удаление
type Downloader interface {
	Open(name string) (*os.File, fs.FileInfo, error)
	Finish(ctx context.Context, name string)
}

// DownloadHandler обработчик скачивания результатов
type DownloadHandler struct {
	downloadUC Downloader
	renderer   Renderer
	logger     *zap.Logger
}

// NewDownloadHandler создаёт новый DownloadHandler
func NewDownloadHandler(downloadUC Downloader, renderer Renderer, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloadUC: downloadUC,
		renderer:   renderer,
		logger:     logger,
	}
}

// Download отдаёт артефакт как вложение
// GET /download/{filename}
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	f, info, err := h.downloadUC.Open(name)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			h.render(w, http.StatusNotFound, &dto.ErrorPage{Message: "File not found or has expired."})
			return
		}
		h.logger.Error("Failed to open artifact", zap.String("name", name), zap.Error(err))
		h.render(w, http.StatusInternalServerError, &dto.ErrorPage{Message: "Failed to read file."})
		return
	}
	defer f.Close()

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	ww.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(ww, r, name, info.ModTime(), f)

	// 304 и 206 не отдают файл целиком: артефакт остаётся.
	// Полная отдача планирует удаление, даже если клиент оборвал соединение.
	if ww.Status() != http.StatusOK {
		return
	}
	h.downloadUC.Finish(context.WithoutCancel(r.Context()), name)
}

func (h *DownloadHandler) render(w http.ResponseWriter, status int, data *dto.ErrorPage) {
	if err := h.renderer.Render(w, status, view.PageError, data); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
	}
}
