package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/plastinin/docconverter/internal/domain"
)

// Recipe фиксированная последовательность шагов одного типа конвертации.
// Рецепт не удаляет входные файлы: ими владеет ConversionUseCase.
type Recipe interface {
	Run(ctx context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error)
}

// officeRecipe конвертация через LibreOffice: pdf2word, word2pdf, excel2pdf, pdf2excel
type officeRecipe struct {
	kind      domain.ConversionKind
	format    string
	prefix    string
	storage   FileStorage
	converter OfficeConverter
}

func (r *officeRecipe) Run(ctx context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	in := files[0]

	work, err := r.storage.MkdirWork()
	if err != nil {
		return nil, err
	}
	defer r.storage.RemoveDir(work)

	if _, err := r.converter.Convert(ctx, in.Path, r.format, work); err != nil {
		return nil, err
	}

	produced := domain.ConvertedPath(in.Path, work, r.format)
	if !r.storage.Exists(produced) {
		return nil, fmt.Errorf("%w: expected %s", domain.ErrOutputMissing, filepath.Base(produced))
	}

	name, path := r.storage.Allocate(r.prefix, r.format)
	if err := r.storage.Rename(produced, path); err != nil {
		return nil, err
	}

	return domain.NewArtifactResult(r.kind, name, path), nil
}

// imagesToPDFRecipe одна страница на каждое JPEG/PNG изображение
type imagesToPDFRecipe struct {
	storage FileStorage
	pdf     PDFProcessor
}

func (r *imagesToPDFRecipe) Run(_ context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	var images []string
	for _, f := range files {
		// Остальные форматы пропускаются без ошибки
		if domain.IsJPEG(f.ContentType) || domain.IsPNG(f.ContentType) {
			images = append(images, f.Path)
		}
	}
	if len(images) == 0 {
		return nil, domain.NewUserError("No supported images found. Please upload JPG or PNG files.",
			domain.ErrNoSupportedImages)
	}

	name, path := r.storage.Allocate(domain.PrefixConvertedImages, "pdf")
	if _, err := r.pdf.ImagesToPDF(images, path); err != nil {
		r.storage.Remove(path)
		return nil, err
	}

	return domain.NewArtifactResult(domain.KindImageToPDF, name, path), nil
}

// pdfToImagesRecipe рендер страниц в PNG и упаковка в zip
type pdfToImagesRecipe struct {
	storage  FileStorage
	renderer PageRenderer
	archiver Archiver
}

func (r *pdfToImagesRecipe) Run(ctx context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	in := files[0]

	work, err := r.storage.MkdirWork()
	if err != nil {
		return nil, err
	}
	defer r.storage.RemoveDir(work)

	pngs, err := r.renderer.RenderPNG(ctx, in.Path, work)
	if err != nil {
		if errors.Is(err, domain.ErrNoPagesRendered) {
			return nil, domain.NewUserError("Failed to convert PDF to images. Please ensure the PDF is valid.", err)
		}
		return nil, domain.NewUserError("Error converting PDF to images: "+err.Error(), err)
	}

	entries := make([]domain.ArchiveEntry, 0, len(pngs))
	for _, p := range pngs {
		entries = append(entries, domain.ArchiveEntry{Name: filepath.Base(p), Path: p})
	}

	name, path := r.storage.Allocate(domain.PrefixPDFImages, "zip")
	if err := r.archiver.WriteZip(path, entries); err != nil {
		return nil, domain.NewUserError("Error converting PDF to images: "+err.Error(), err)
	}

	return domain.NewArtifactResult(domain.KindPDFToImage, name, path), nil
}

// mergeRecipe склейка PDF в порядке загрузки
type mergeRecipe struct {
	storage FileStorage
	pdf     PDFProcessor
}

func (r *mergeRecipe) Run(_ context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	inputs := make([]string, 0, len(files))
	for _, f := range files {
		inputs = append(inputs, f.Path)
	}

	name, path := r.storage.Allocate(domain.PrefixMergedPDFs, "pdf")
	if err := r.pdf.Merge(inputs, path); err != nil {
		r.storage.Remove(path)
		return nil, err
	}

	return domain.NewArtifactResult(domain.KindMergePDF, name, path), nil
}

// splitRecipe одна страница на документ, zip page_1.pdf … page_N.pdf
type splitRecipe struct {
	storage  FileStorage
	pdf      PDFProcessor
	archiver Archiver
}

func (r *splitRecipe) Run(_ context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	pages, err := r.pdf.Split(files[0].Path)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ArchiveEntry, 0, len(pages))
	for i, data := range pages {
		entries = append(entries, domain.ArchiveEntry{
			Name: fmt.Sprintf("page_%d.pdf", i+1),
			Data: data,
		})
	}

	name, path := r.storage.Allocate(domain.PrefixSplitPages, "zip")
	if err := r.archiver.WriteZip(path, entries); err != nil {
		return nil, err
	}

	return domain.NewArtifactResult(domain.KindSplitPDF, name, path), nil
}

// compressRecipe пересборка PDF
type compressRecipe struct {
	storage FileStorage
	pdf     PDFProcessor
}

func (r *compressRecipe) Run(_ context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	name, path := r.storage.Allocate(domain.PrefixCompressed, "pdf")
	if err := r.pdf.Compress(files[0].Path, path); err != nil {
		r.storage.Remove(path)
		return nil, err
	}

	return domain.NewArtifactResult(domain.KindCompressPDF, name, path), nil
}

// Сообщения OCR отдаются как текст результата, а не как ошибка
const (
	ocrNoTextMessage      = "Could not extract text from PDF. The PDF might be empty or contain only non-text content."
	ocrUnsupportedMessage = "Unsupported file type for OCR. Please upload an image (PNG, JPG) or PDF file."
	ocrErrorPrefix        = "Error during OCR processing: "
)

// ocrRecipe распознавание текста; PDF сначала рендерится в PNG
type ocrRecipe struct {
	storage    FileStorage
	renderer   PageRenderer
	recognizer TextRecognizer
}

func (r *ocrRecipe) Run(ctx context.Context, files []domain.UploadedFile) (*domain.ConversionResult, error) {
	text, err := r.extract(ctx, files[0])
	if err != nil {
		text = ocrErrorPrefix + err.Error()
	}
	return domain.NewTextResult(domain.KindOCR, text), nil
}

func (r *ocrRecipe) extract(ctx context.Context, in domain.UploadedFile) (string, error) {
	switch {
	case domain.IsImage(in.ContentType):
		return r.recognizer.Recognize(ctx, in.Path)

	case domain.IsPDF(in.ContentType):
		work, err := r.storage.MkdirWork()
		if err != nil {
			return "", err
		}
		defer r.storage.RemoveDir(work)

		pngs, err := r.renderer.RenderPNG(ctx, in.Path, work)
		if errors.Is(err, domain.ErrNoPagesRendered) {
			return ocrNoTextMessage, nil
		}
		if err != nil {
			return "", err
		}
		return r.recognizer.Recognize(ctx, pngs[0])
	}

	return ocrUnsupportedMessage, nil
}
