package domain

import (
	"path/filepath"
	"strings"
)

// UploadedFile загруженный файл, принадлежит одному запросу
type UploadedFile struct {
	Name        string // Оригинальное имя файла
	ContentType string // MIME тип, как его прислал клиент
	Size        int64
	Path        string // Путь во временном хранилище
}

// Ext возвращает расширение оригинального имени в нижнем регистре
func (f UploadedFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Маппинг расширений на MIME типы
var extToContentType = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ContentTypeFromFileName определяет MIME тип по имени файла
func ContentTypeFromFileName(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ct, ok := extToContentType[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateFile сверяет файл со списком допустимых типов.
// Элемент, начинающийся с точки, сравнивается с расширением,
// остальные ищутся как подстрока в content type.
func ValidateFile(fileName, contentType string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, entry := range allowed {
		if strings.HasPrefix(entry, ".") {
			if ext == entry {
				return true
			}
			continue
		}
		if strings.Contains(contentType, entry) {
			return true
		}
	}
	return false
}

func normalizeContentType(contentType string) string {
	ct := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(ct))
}

// IsImage проверяет, является ли файл изображением
func IsImage(contentType string) bool {
	return strings.HasPrefix(normalizeContentType(contentType), "image/")
}

// IsPDF проверяет, является ли файл PDF
func IsPDF(contentType string) bool {
	return normalizeContentType(contentType) == "application/pdf"
}

// IsJPEG и IsPNG: единственные форматы, которые можно встроить в PDF
func IsJPEG(contentType string) bool {
	return normalizeContentType(contentType) == "image/jpeg"
}

func IsPNG(contentType string) bool {
	return normalizeContentType(contentType) == "image/png"
}

// ConvertedPath путь, под которым внешний конвертер сохранит результат:
// имя входного файла без расширения плюс новое расширение
func ConvertedPath(inputPath, outDir, ext string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+"."+strings.TrimPrefix(ext, "."))
}
