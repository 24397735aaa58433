package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/plastinin/docconverter/internal/domain"
	"github.com/signintech/gopdf"
)

func init() {
	// pdfcpu иначе создаёт каталог конфигурации в домашней папке
	api.DisableConfigDir()
}

// Processor операции над PDF в процессе
type Processor struct{}

// NewProcessor создаёт новый процессор
func NewProcessor() *Processor {
	return &Processor{}
}

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Merge склеивает страницы входных файлов по порядку
func (p *Processor) Merge(inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: nothing to merge", domain.ErrInvalidDocument)
	}
	if err := api.MergeCreateFile(inputs, output, false, newConfig()); err != nil {
		os.Remove(output)
		return fmt.Errorf("%w: merge: %v", domain.ErrInvalidDocument, err)
	}
	return nil
}

// Split возвращает каждую страницу отдельным PDF документом
func (p *Processor) Split(input string) ([][]byte, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	conf := newConfig()
	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}

	pages := make([][]byte, 0, count)
	for i := 1; i <= count; i++ {
		var buf bytes.Buffer
		if err := api.Trim(bytes.NewReader(data), &buf, []string{strconv.Itoa(i)}, conf); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrInvalidDocument, i, err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// Compress пересобирает документ без object streams
func (p *Processor) Compress(input, output string) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	conf := newConfig()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	if err := api.Optimize(in, out, conf); err != nil {
		out.Close()
		os.Remove(output)
		return fmt.Errorf("%w: optimize: %v", domain.ErrInvalidDocument, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(output)
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}

// PageCount число страниц документа
func (p *Processor) PageCount(input string) (int, error) {
	f, err := os.Open(input)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, newConfig())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return n, nil
}

// ImagesToPDF кладёт каждое изображение на отдельную страницу
// размером с само изображение. Возвращает число страниц.
func (p *Processor) ImagesToPDF(images []string, output string) (int, error) {
	if len(images) == 0 {
		return 0, domain.ErrNoSupportedImages
	}

	doc := &gopdf.GoPdf{}
	first, err := imageSize(images[0])
	if err != nil {
		return 0, err
	}
	doc.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: first})

	for _, path := range images {
		size, err := imageSize(path)
		if err != nil {
			return 0, err
		}

		doc.AddPageWithOption(gopdf.PageOption{PageSize: &size})
		if err := doc.Image(path, 0, 0, &size); err != nil {
			return 0, fmt.Errorf("%w: embed image: %v", domain.ErrInvalidDocument, err)
		}
	}

	if err := doc.WritePdf(output); err != nil {
		os.Remove(output)
		return 0, fmt.Errorf("failed to write PDF: %w", err)
	}

	return len(images), nil
}

// imageSize размер изображения в пикселях
func imageSize(path string) (gopdf.Rect, error) {
	f, err := os.Open(path)
	if err != nil {
		return gopdf.Rect{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return gopdf.Rect{}, fmt.Errorf("%w: unknown image format", domain.ErrInvalidDocument)
		}
		return gopdf.Rect{}, fmt.Errorf("%w: decode image: %v", domain.ErrInvalidDocument, err)
	}

	return gopdf.Rect{W: float64(cfg.Width), H: float64(cfg.Height)}, nil
}
