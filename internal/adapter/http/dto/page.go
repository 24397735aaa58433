package dto

import (
	"net/url"
	"strings"

	"github.com/plastinin/docconverter/internal/domain"
)

// KindOption пункт выбора типа конвертации
type KindOption struct {
	Value  string
	Label  string
	Accept string // Значение атрибута accept для input[type=file]
}

// IndexPage данные формы загрузки
type IndexPage struct {
	Kinds         []KindOption
	Accept        string
	MaxFiles      int
	MaxFileSizeMB int64
}

// NewIndexPage собирает форму из списка типов домена
func NewIndexPage(maxFiles int, maxFileSize int64) *IndexPage {
	page := &IndexPage{
		Kinds:         make([]KindOption, 0, len(domain.AllKinds)),
		MaxFiles:      maxFiles,
		MaxFileSizeMB: maxFileSize >> 20,
	}

	seen := make(map[string]bool)
	var all []string
	for _, kind := range domain.AllKinds {
		exts := extensions(kind.AllowedTypes())
		page.Kinds = append(page.Kinds, KindOption{
			Value:  kind.String(),
			Label:  kind.Label(),
			Accept: strings.Join(exts, ","),
		})
		for _, e := range exts {
			if !seen[e] {
				seen[e] = true
				all = append(all, e)
			}
		}
	}
	page.Accept = strings.Join(all, ",")

	return page
}

func extensions(allowed []string) []string {
	var exts []string
	for _, a := range allowed {
		if strings.HasPrefix(a, ".") {
			exts = append(exts, a)
		}
	}
	return exts
}

// PrivacyPage данные статической страницы
type PrivacyPage struct {
	RetentionHint string
}

// SuccessPage ссылка на скачивание артефакта
type SuccessPage struct {
	Label       string
	FileName    string
	DownloadURL string
}

// SuccessFromDomain конвертирует результат в данные страницы
func SuccessFromDomain(result *domain.ConversionResult) *SuccessPage {
	return &SuccessPage{
		Label:       result.Kind.Label(),
		FileName:    result.Artifact.FileName,
		DownloadURL: "/download/" + url.PathEscape(result.Artifact.FileName),
	}
}

// OCRPage извлечённый текст
type OCRPage struct {
	Text string
}

// ErrorPage сообщение об ошибке
type ErrorPage struct {
	Message string
}
