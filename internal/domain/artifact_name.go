package domain

import (
	"regexp"
	"strings"
)

// Префиксы имён артефактов
const (
	PrefixUpload          = "upload"
	PrefixConverted       = "converted"
	PrefixConvertedExcel  = "converted_excel"
	PrefixConvertedImages = "converted_images"
	PrefixPDFImages       = "pdf_images"
	PrefixMergedPDFs      = "merged_pdfs"
	PrefixSplitPages      = "split_pages"
	PrefixCompressed      = "compressed"
)

var artifactPrefixes = []string{
	PrefixConverted,
	PrefixConvertedExcel,
	PrefixConvertedImages,
	PrefixPDFImages,
	PrefixMergedPDFs,
	PrefixSplitPages,
	PrefixCompressed,
}

// WorkDirPrefix префикс рабочих каталогов внешних инструментов
const WorkDirPrefix = "docconverter-work-"

var (
	// <prefix>_<unix ms>_<8 hex>[.ext], как выдаёт Allocate
	artifactPattern = regexp.MustCompile(
		`^(` + strings.Join(artifactPrefixes, "|") + `)_[0-9]+_[0-9a-f]{8}(\.[A-Za-z0-9]+)?$`,
	)
	// upload_<uuid>[.ext]
	uploadPattern = regexp.MustCompile(
		`^` + PrefixUpload + `_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[A-Za-z0-9]+)?$`,
	)
	// os.MkdirTemp дописывает к префиксу случайное число
	workDirPattern = regexp.MustCompile(`^` + WorkDirPrefix + `[0-9]+$`)
)

// IsArtifactName проверяет, что имя выдано нами как артефакт.
// Только такие файлы можно скачать из temp каталога.
func IsArtifactName(name string) bool {
	return artifactPattern.MatchString(name)
}

// IsOwnedName проверяет, что файл создан сервером: артефакт или загрузка.
// Чужие файлы с похожими именами не совпадают.
func IsOwnedName(name string) bool {
	return IsArtifactName(name) || uploadPattern.MatchString(name)
}

// IsWorkDirName проверяет имя рабочего каталога
func IsWorkDirName(name string) bool {
	return workDirPattern.MatchString(name)
}

// ArchiveEntry элемент zip архива: либо файл на диске, либо буфер
type ArchiveEntry struct {
	Name string
	Path string
	Data []byte
}
