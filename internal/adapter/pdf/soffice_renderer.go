package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plastinin/docconverter/internal/domain"
)

// officeConverter внешний конвертер (LibreOffice)
type officeConverter interface {
	Convert(ctx context.Context, inputPath, format, outDir string) (string, error)
}

// SofficeRenderer рендерит PDF в PNG через внешний конвертер
type SofficeRenderer struct {
	converter officeConverter
}

// NewSofficeRenderer создаёт рендерер поверх конвертера
func NewSofficeRenderer(converter officeConverter) *SofficeRenderer {
	return &SofficeRenderer{converter: converter}
}

// RenderPNG возвращает все PNG в outDir, имя которых начинается
// с имени входного файла. Ноль совпадений даёт ErrNoPagesRendered.
func (r *SofficeRenderer) RenderPNG(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	if _, err := r.converter.Convert(ctx, pdfPath, "png", outDir); err != nil {
		return nil, err
	}

	base := filepath.Base(pdfPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output dir: %w", err)
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, base) && strings.HasSuffix(name, ".png") {
			matches = append(matches, filepath.Join(outDir, name))
		}
	}

	if len(matches) == 0 {
		return nil, domain.ErrNoPagesRendered
	}

	sort.Strings(matches)
	return matches, nil
}
