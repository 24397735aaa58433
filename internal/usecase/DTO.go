package usecase

import (
	"io"
)

// ConvertInput входные данные для конвертации
type ConvertInput struct {
	RequestID string        // ID запроса для логов
	Kind      string        // Значение поля формы "type"
	Files     []UploadInput // Загруженные файлы в порядке формы
}

// UploadInput один загруженный файл
type UploadInput struct {
	FileName    string                        // Имя файла от клиента
	ContentType string                        // MIME тип, может быть пустым
	FileSize    int64                         // Размер файла
	Open        func() (io.ReadCloser, error) // Содержимое файла
}
