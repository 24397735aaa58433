package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/plastinin/docconverter/internal/domain"
	"go.uber.org/zap"
)

// SofficeInvoker запускает LibreOffice в headless режиме
type SofficeInvoker struct {
	locator Locator
	timeout time.Duration
	logger  *zap.Logger
}

// NewSofficeInvoker создаёт новый экземпляр SofficeInvoker
func NewSofficeInvoker(locator Locator, timeout time.Duration, logger *zap.Logger) *SofficeInvoker {
	return &SofficeInvoker{
		locator: locator,
		timeout: timeout,
		logger:  logger,
	}
}

// Convert выполняет
//
//	soffice -env:UserInstallation=... --headless --convert-to <format> --outdir <outDir> <input>
//
// и возвращает stdout. Ошибка содержит stderr или stdout процесса.
func (i *SofficeInvoker) Convert(ctx context.Context, inputPath, format, outDir string) (string, error) {
	bin, err := i.locator.Locate()
	if err != nil {
		return "", err
	}

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for input: %w", err)
	}
	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for output: %w", err)
	}

	// Свой профиль на каждый запуск: параллельные soffice иначе
	// упираются в блокировку общего профиля
	profileDir, err := os.MkdirTemp("", "docconverter-soffice-*")
	if err != nil {
		return "", fmt.Errorf("failed to create profile dir: %w", err)
	}
	defer os.RemoveAll(profileDir)

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	args := Args(profileDir, format, absOutDir, absInput)
	cmd := exec.CommandContext(ctx, bin, args...)
	// Дочерние процессы soffice могут держать pipe после kill
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	i.logger.Debug("Executing converter",
		zap.String("bin", bin),
		zap.Strings("args", args),
	)

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			output = fmt.Sprintf("timed out after %s", i.timeout)
		}
		if output == "" {
			output = err.Error()
		}

		i.logger.Warn("Converter failed",
			zap.String("format", format),
			zap.Duration("duration", duration),
			zap.String("output", output),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %s", domain.ErrConversionFailed, output)
	}

	i.logger.Debug("Converter finished",
		zap.String("format", format),
		zap.Duration("duration", duration),
	)

	return stdout.String(), nil
}

// Args собирает аргументы командной строки soffice
func Args(profileDir, format, outDir, input string) []string {
	return []string{
		"-env:UserInstallation=" + fileURL(profileDir),
		"--headless",
		"--convert-to", format,
		"--outdir", outDir,
		input,
	}
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
