package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/docconverter/internal/adapter/http/dto"
	"github.com/plastinin/docconverter/internal/adapter/http/view"
	"github.com/plastinin/docconverter/internal/config"
	"github.com/plastinin/docconverter/internal/domain"
	"github.com/plastinin/docconverter/internal/usecase"
	"go.uber.org/zap"
)

const (
	// Файлы больше этого пишутся multipart парсером на диск
	multipartMemory = 32 << 20
	formFiles       = "files"
	formType        = "type"
)

// Converter выполняет конвертацию загруженных файлов
type Converter interface {
	Convert(ctx context.Context, input usecase.ConvertInput) (*domain.ConversionResult, error)
}

// Renderer рисует HTML страницы
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// ConvertHandler обработчик загрузки и конвертации
type ConvertHandler struct {
	conversionUC Converter
	renderer     Renderer
	limits       config.UploadConfig
	logger       *zap.Logger
}

// NewConvertHandler создаёт новый ConvertHandler
func NewConvertHandler(
	conversionUC Converter,
	renderer Renderer,
	limits config.UploadConfig,
	logger *zap.Logger,
) *ConvertHandler {
	return &ConvertHandler{
		conversionUC: conversionUC,
		renderer:     renderer,
		limits:       limits,
		logger:       logger,
	}
}

// Convert загружает файлы и выполняет конвертацию
// POST /convert
// Content-Type: multipart/form-data
// - files: 1..N файлов
// - type: тип конвертации (pdf2word, ..., ocr)
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxRequestSize())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, http.StatusOK, h.fileTooLargeMessage(), err)
			return
		}
		h.fail(w, r, http.StatusOK, "No file uploaded.", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[formFiles]
	if err := h.checkLimits(headers); err != nil {
		message := h.fileTooLargeMessage()
		if errors.Is(err, domain.ErrTooManyFiles) {
			message = fmt.Sprintf("Too many files. Maximum is %d files per request.", h.limits.MaxFiles)
		}
		h.fail(w, r, http.StatusOK, message, err)
		return
	}

	input := usecase.ConvertInput{
		RequestID: middleware.GetReqID(r.Context()),
		Kind:      r.FormValue(formType),
		Files:     make([]usecase.UploadInput, 0, len(headers)),
	}
	for _, fh := range headers {
		input.Files = append(input.Files, usecase.UploadInput{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			FileSize:    fh.Size,
			Open:        opener(fh),
		})
	}

	result, err := h.conversionUC.Convert(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if result.IsText() {
		h.render(w, http.StatusOK, view.PageOCR, &dto.OCRPage{Text: result.Text})
		return
	}
	h.render(w, http.StatusOK, view.PageSuccess, dto.SuccessFromDomain(result))
}

func (h *ConvertHandler) checkLimits(headers []*multipart.FileHeader) error {
	if len(headers) > h.limits.MaxFiles {
		return fmt.Errorf("%w: %d files", domain.ErrTooManyFiles, len(headers))
	}
	for _, fh := range headers {
		if fh.Size > h.limits.MaxFileSize {
			return fmt.Errorf("%w: %s is %d bytes", domain.ErrFileTooLarge, fh.Filename, fh.Size)
		}
	}
	return nil
}

func (h *ConvertHandler) fileTooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum file size is %dMB.", h.limits.MaxFileSize>>20)
}

// handleError ошибки рецептов показываются страницей со статусом 200,
// остальное считается сбоем сервера
func (h *ConvertHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var userErr *domain.UserError
	switch {
	case errors.As(err, &userErr):
		h.fail(w, r, http.StatusOK, userErr.Message, err)
	case isRecipeError(err):
		h.fail(w, r, http.StatusOK, "Error during conversion: "+err.Error(), err)
	default:
		h.logger.Error("Conversion failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		h.render(w, http.StatusInternalServerError, view.PageError,
			&dto.ErrorPage{Message: "Error during conversion: " + err.Error()})
	}
}

func isRecipeError(err error) bool {
	for _, target := range []error{
		domain.ErrConverterNotFound,
		domain.ErrConversionFailed,
		domain.ErrOutputMissing,
		domain.ErrNoPagesRendered,
		domain.ErrInvalidDocument,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail показывает страницу ошибки, которую пользователь может исправить сам
func (h *ConvertHandler) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	h.logger.Warn("Conversion rejected",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("message", message),
		zap.Error(err),
	)
	h.render(w, status, view.PageError, &dto.ErrorPage{Message: message})
}

func (h *ConvertHandler) render(w http.ResponseWriter, status int, page string, data any) {
	if err := h.renderer.Render(w, status, page, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
	}
}

func opener(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}
