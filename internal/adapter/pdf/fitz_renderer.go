package pdf

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/plastinin/docconverter/internal/domain"
)

// FitzRenderer рендерит страницы PDF в PNG через MuPDF, без внешних процессов
type FitzRenderer struct{}

// NewFitzRenderer создаёт новый рендерер
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// RenderPNG сохраняет каждую страницу как <base>-<n>.png в outDir
func (r *FitzRenderer) RenderPNG(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", domain.ErrInvalidDocument, err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return nil, domain.ErrNoPagesRendered
	}

	base := filepath.Base(pdfPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	paths := make([]string, 0, numPages)
	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			removeAll(paths)
			return nil, err
		}

		img, err := doc.Image(i)
		if err != nil {
			removeAll(paths)
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		path := filepath.Join(outDir, fmt.Sprintf("%s-%d.png", base, i+1))
		if err := writePNG(path, img); err != nil {
			removeAll(paths)
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
