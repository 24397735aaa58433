package handler

import (
	"encoding/json"
	"net/http"

	"github.com/plastinin/docconverter/internal/adapter/http/dto"
)

// ConverterLocator ищет исполняемый файл внешнего конвертера
type ConverterLocator interface {
	Locate() (string, error)
}

// HealthHandler обработчик health check запросов
type HealthHandler struct {
	locator ConverterLocator
}

// NewHealthHandler создаёт новый HealthHandler
func NewHealthHandler(locator ConverterLocator) *HealthHandler {
	return &HealthHandler{locator: locator}
}

// Check проверяет состояние сервиса.
// Без soffice сервис жив, но половина конвертаций недоступна.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{Status: "ok"}
	if path, err := h.locator.Locate(); err != nil {
		resp.Status = "degraded"
	} else {
		resp.Converter = path
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
