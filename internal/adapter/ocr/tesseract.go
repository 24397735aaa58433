package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// TesseractRecognizer распознаёт текст на изображениях через libtesseract
type TesseractRecognizer struct {
	languages []string
	logger    *zap.Logger
}

// NewTesseractRecognizer создаёт распознаватель.
// language может содержать несколько языков через "+", например "eng+rus".
func NewTesseractRecognizer(language string, logger *zap.Logger) *TesseractRecognizer {
	var langs []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{"eng"}
	}

	return &TesseractRecognizer{
		languages: langs,
		logger:    logger,
	}
}

// Recognize возвращает текст с изображения imagePath.
// Клиент создаётся на каждый вызов: gosseract.Client не потокобезопасен.
func (r *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}

	r.logger.Debug("OCR finished",
		zap.Strings("languages", r.languages),
		zap.Int("chars", len(text)),
	)

	return text, nil
}
