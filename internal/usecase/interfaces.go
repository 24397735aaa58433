package usecase

import (
	"context"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/plastinin/docconverter/internal/domain"
)

// FileStorage интерфейс временного файлового хранилища
type FileStorage interface {
	Allocate(prefix, ext string) (name, path string)
	Save(ctx context.Context, ext string, reader io.Reader) (path string, err error)
	Exists(path string) bool
	Rename(from, to string) error
	Remove(path string)
	RemoveAll(paths []string)
	MkdirWork() (string, error)
	RemoveDir(dir string)
	Open(name string) (*os.File, fs.FileInfo, error)
}

// OfficeConverter интерфейс внешнего конвертера документов (LibreOffice)
type OfficeConverter interface {
	Convert(ctx context.Context, inputPath, format, outDir string) (stdout string, err error)
}

// PDFProcessor интерфейс операций над PDF в процессе
type PDFProcessor interface {
	Merge(inputs []string, output string) error
	Split(input string) ([][]byte, error)
	Compress(input, output string) error
	ImagesToPDF(images []string, output string) (pages int, err error)
}

// PageRenderer рендерит страницы PDF в PNG
type PageRenderer interface {
	RenderPNG(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// TextRecognizer интерфейс OCR
type TextRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Archiver интерфейс упаковки результатов в zip
type Archiver interface {
	WriteZip(outputPath string, entries []domain.ArchiveEntry) error
}

// CleanupScheduler откладывает удаление артефакта после скачивания
type CleanupScheduler interface {
	Schedule(ctx context.Context, name string, after time.Duration) error
}
