package domain

import (
	"errors"
	"fmt"
)

// Ошибки домена
var (
	ErrNoFiles             = errors.New("no files uploaded")
	ErrTooManyFiles        = errors.New("too many files")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnknownKind         = errors.New("unknown conversion kind")
	ErrConverterNotFound   = errors.New("converter executable not found")
	ErrConversionFailed    = errors.New("external conversion failed")
	ErrOutputMissing       = errors.New("converter produced no output")
	ErrNoPagesRendered     = errors.New("no pages rendered")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrNoSupportedImages   = errors.New("no supported images")
	ErrArtifactNotFound    = errors.New("artifact not found")
)

// ConversionKind тип конвертации, выбирает рецепт
type ConversionKind string

const (
	KindPDFToWord   ConversionKind = "pdf2word"
	KindWordToPDF   ConversionKind = "word2pdf"
	KindImageToPDF  ConversionKind = "img2pdf"
	KindPDFToImage  ConversionKind = "pdf2img"
	KindExcelToPDF  ConversionKind = "excel2pdf"
	KindPDFToExcel  ConversionKind = "pdf2excel"
	KindMergePDF    ConversionKind = "mergepdf"
	KindSplitPDF    ConversionKind = "splitpdf"
	KindCompressPDF ConversionKind = "compresspdf"
	KindOCR         ConversionKind = "ocr"
)

// AllKinds в порядке отображения на форме
var AllKinds = []ConversionKind{
	KindPDFToWord,
	KindWordToPDF,
	KindImageToPDF,
	KindPDFToImage,
	KindExcelToPDF,
	KindPDFToExcel,
	KindMergePDF,
	KindSplitPDF,
	KindCompressPDF,
	KindOCR,
}

var pdfOnly = []string{".pdf", "application/pdf"}

var allowedTypes = map[ConversionKind][]string{
	KindPDFToWord: pdfOnly,
	KindWordToPDF: {
		".doc", ".docx",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	KindImageToPDF: {".jpg", ".jpeg", ".png", ".gif", "image/"},
	KindPDFToImage: pdfOnly,
	KindExcelToPDF: {
		".xls", ".xlsx",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	},
	KindPDFToExcel:  pdfOnly,
	KindMergePDF:    pdfOnly,
	KindSplitPDF:    pdfOnly,
	KindCompressPDF: pdfOnly,
	KindOCR:         {".jpg", ".jpeg", ".png", ".pdf", "image/", "application/pdf"},
}

var kindLabels = map[ConversionKind]string{
	KindPDFToWord:   "PDF to Word",
	KindWordToPDF:   "Word to PDF",
	KindImageToPDF:  "Images to PDF",
	KindPDFToImage:  "PDF to Images",
	KindExcelToPDF:  "Excel to PDF",
	KindPDFToExcel:  "PDF to Excel",
	KindMergePDF:    "PDF Merge",
	KindSplitPDF:    "PDF Split",
	KindCompressPDF: "PDF Compression",
	KindOCR:         "OCR",
}

// IsValid проверяет, что тип известен
func (k ConversionKind) IsValid() bool {
	_, ok := allowedTypes[k]
	return ok
}

// AllowedTypes возвращает допустимые расширения и content type
func (k ConversionKind) AllowedTypes() []string {
	return allowedTypes[k]
}

// Label человекочитаемое название для страниц
func (k ConversionKind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func (k ConversionKind) String() string {
	return string(k)
}

// ParseKind разбирает значение поля формы "type"
func ParseKind(s string) (ConversionKind, error) {
	k := ConversionKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// ConversionRequest запрос на конвертацию, живёт в пределах одного HTTP запроса
type ConversionRequest struct {
	RequestID string
	Kind      ConversionKind
	Files     []UploadedFile
}

// Paths возвращает пути всех загруженных файлов
func (r ConversionRequest) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Validate проверяет каждый файл пакета по списку типов
func (r ConversionRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	allowed := r.Kind.AllowedTypes()
	if allowed == nil {
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	for _, f := range r.Files {
		if !ValidateFile(f.Name, f.ContentType, allowed) {
			return fmt.Errorf("%w: %s for %s", ErrUnsupportedFileType, f.Name, r.Kind)
		}
	}
	return nil
}

// Artifact файл результата, ожидающий скачивания
type Artifact struct {
	FileName string
	Path     string
}

// ConversionResult либо артефакт, либо извлечённый текст
type ConversionResult struct {
	Kind     ConversionKind
	Artifact *Artifact
	Text     string
}

// NewArtifactResult результат в виде файла
func NewArtifactResult(kind ConversionKind, fileName, path string) *ConversionResult {
	return &ConversionResult{
		Kind:     kind,
		Artifact: &Artifact{FileName: fileName, Path: path},
	}
}

// NewTextResult результат в виде текста (OCR)
func NewTextResult(kind ConversionKind, text string) *ConversionResult {
	return &ConversionResult{Kind: kind, Text: text}
}

// IsText проверяет, что результат отдаётся прямо на странице
func (r *ConversionResult) IsText() bool {
	return r.Artifact == nil
}

// UserError ошибка, которую можно показать пользователю как есть
type UserError struct {
	Message string
	Err     error
}

// NewUserError оборачивает err сообщением для страницы ошибки
func NewUserError(message string, err error) *UserError {
	return &UserError{Message: message, Err: err}
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}
