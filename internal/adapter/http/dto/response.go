package dto

// HealthResponse ответ health check
type HealthResponse struct {
	Status string `json:"status"`
	// Путь к soffice; пусто, если конвертер не найден
	Converter string `json:"converter,omitempty"`
}
