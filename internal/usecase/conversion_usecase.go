package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/plastinin/docconverter/internal/domain"
	"go.uber.org/zap"
)

// ConversionUseCase бизнес-логика конвертации загруженных файлов
type ConversionUseCase struct {
	fileStorage FileStorage
	converter   OfficeConverter
	pdf         PDFProcessor
	renderer    PageRenderer
	recognizer  TextRecognizer
	archiver    Archiver
	logger      *zap.Logger
}

// NewConversionUseCase создаёт новый экземпляр ConversionUseCase
func NewConversionUseCase(
	fileStorage FileStorage,
	converter OfficeConverter,
	pdf PDFProcessor,
	renderer PageRenderer,
	recognizer TextRecognizer,
	archiver Archiver,
	logger *zap.Logger,
) *ConversionUseCase {
	return &ConversionUseCase{
		fileStorage: fileStorage,
		converter:   converter,
		pdf:         pdf,
		renderer:    renderer,
		recognizer:  recognizer,
		archiver:    archiver,
		logger:      logger,
	}
}

// Convert сохраняет загрузки, проверяет их и выполняет рецепт.
// Все загруженные файлы удаляются до возврата при любом исходе.
func (uc *ConversionUseCase) Convert(ctx context.Context, input ConvertInput) (*domain.ConversionResult, error) {
	req := domain.ConversionRequest{
		RequestID: input.RequestID,
		Kind:      domain.ConversionKind(input.Kind),
	}
	// Единственный владелец путей загрузок
	defer func() {
		uc.fileStorage.RemoveAll(req.Paths())
	}()

	tr := newTracker(req, uc.logger)

	for _, in := range input.Files {
		file, err := uc.save(ctx, in)
		if err != nil {
			tr.fail(err)
			return nil, err
		}
		req.Files = append(req.Files, file)
	}
	tr.req = req

	if err := req.Validate(); err != nil {
		tr.fail(err)
		return nil, validationError(req.Kind, err)
	}

	recipe, err := uc.recipeFor(req.Kind)
	if err != nil {
		tr.fail(err)
		return nil, validationError(req.Kind, err)
	}

	tr.to(domain.StateConverting)

	result, err := recipe.Run(ctx, req.Files)
	if err != nil {
		tr.fail(err)
		return nil, err
	}

	tr.succeed(result)
	return result, nil
}

// save копирует один файл формы во временное хранилище
func (uc *ConversionUseCase) save(ctx context.Context, in UploadInput) (domain.UploadedFile, error) {
	rc, err := in.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("failed to open upload %s: %w", in.FileName, err)
	}
	defer rc.Close()

	path, err := uc.fileStorage.Save(ctx, filepath.Ext(in.FileName), rc)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("failed to store upload %s: %w", in.FileName, err)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeFromFileName(in.FileName)
	}

	return domain.UploadedFile{
		Name:        in.FileName,
		ContentType: contentType,
		Size:        in.FileSize,
		Path:        path,
	}, nil
}

// recipeFor выбирает вариант рецепта. Новый ConversionKind без ветки
// здесь остаётся ErrUnknownKind.
func (uc *ConversionUseCase) recipeFor(kind domain.ConversionKind) (Recipe, error) {
	switch kind {
	case domain.KindPDFToWord:
		return uc.office(kind, "docx", domain.PrefixConverted), nil
	case domain.KindWordToPDF:
		return uc.office(kind, "pdf", domain.PrefixConverted), nil
	case domain.KindExcelToPDF:
		return uc.office(kind, "pdf", domain.PrefixConvertedExcel), nil
	case domain.KindPDFToExcel:
		return uc.office(kind, "xlsx", domain.PrefixConverted), nil
	case domain.KindImageToPDF:
		return &imagesToPDFRecipe{storage: uc.fileStorage, pdf: uc.pdf}, nil
	case domain.KindPDFToImage:
		return &pdfToImagesRecipe{storage: uc.fileStorage, renderer: uc.renderer, archiver: uc.archiver}, nil
	case domain.KindMergePDF:
		return &mergeRecipe{storage: uc.fileStorage, pdf: uc.pdf}, nil
	case domain.KindSplitPDF:
		return &splitRecipe{storage: uc.fileStorage, pdf: uc.pdf, archiver: uc.archiver}, nil
	case domain.KindCompressPDF:
		return &compressRecipe{storage: uc.fileStorage, pdf: uc.pdf}, nil
	case domain.KindOCR:
		return &ocrRecipe{storage: uc.fileStorage, renderer: uc.renderer, recognizer: uc.recognizer}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
}

func (uc *ConversionUseCase) office(kind domain.ConversionKind, format, prefix string) Recipe {
	return &officeRecipe{
		kind:      kind,
		format:    format,
		prefix:    prefix,
		storage:   uc.fileStorage,
		converter: uc.converter,
	}
}

// validationError переводит ошибку проверки запроса в сообщение для страницы
func validationError(kind domain.ConversionKind, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoFiles):
		return domain.NewUserError("No file uploaded.", err)
	case errors.Is(err, domain.ErrUnknownKind):
		return domain.NewUserError("Conversion type not implemented.", err)
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return domain.NewUserError(
			fmt.Sprintf("Invalid file type for %s. Please upload the correct file format.", kind), err)
	}
	return err
}

// tracker логирует переходы состояний одного запроса
type tracker struct {
	req     domain.ConversionRequest
	state   domain.ConversionState
	started time.Time
	logger  *zap.Logger
}

func newTracker(req domain.ConversionRequest, logger *zap.Logger) *tracker {
	t := &tracker{
		req:     req,
		state:   domain.StateValidating,
		started: time.Now(),
		logger:  logger,
	}
	t.logger.Debug("Conversion state",
		zap.String("request_id", req.RequestID),
		zap.String("kind", req.Kind.String()),
		zap.String("state", t.state.String()),
	)
	return t
}

func (t *tracker) to(next domain.ConversionState, fields ...zap.Field) {
	if !t.state.CanTransition(next) {
		t.logger.Warn("Unexpected conversion state transition",
			zap.String("request_id", t.req.RequestID),
			zap.String("from", t.state.String()),
			zap.String("to", next.String()),
		)
	}
	t.state = next

	fields = append([]zap.Field{
		zap.String("request_id", t.req.RequestID),
		zap.String("kind", t.req.Kind.String()),
		zap.String("state", next.String()),
		zap.Int("files", len(t.req.Files)),
	}, fields...)

	if next.IsFinal() {
		fields = append(fields, zap.Duration("duration", time.Since(t.started)))
	}

	if next == domain.StateFailed {
		t.logger.Warn("Conversion failed", fields...)
		return
	}
	t.logger.Info("Conversion state", fields...)
}

func (t *tracker) fail(err error) {
	t.to(domain.StateFailed, zap.Error(err))
}

func (t *tracker) succeed(result *domain.ConversionResult) {
	if result.IsText() {
		t.to(domain.StateSucceeded, zap.Int("text_length", len(result.Text)))
		return
	}
	t.to(domain.StateSucceeded, zap.String("artifact", result.Artifact.FileName))
}
