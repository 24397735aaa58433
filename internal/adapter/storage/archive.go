package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/plastinin/docconverter/internal/domain"
)

// ZipArchiver собирает zip архивы с максимальным сжатием
type ZipArchiver struct{}

// NewZipArchiver создаёт архиватор
func NewZipArchiver() *ZipArchiver {
	return &ZipArchiver{}
}

// WriteZip пишет entries в outputPath в переданном порядке
func (a *ZipArchiver) WriteZip(outputPath string, entries []domain.ArchiveEntry) (err error) {
	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
		if err != nil {
			os.Remove(outputPath)
		}
	}()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	for _, e := range entries {
		if err := addEntry(zw, e); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, e domain.ArchiveEntry) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   e.Name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", e.Name, err)
	}

	if e.Data != nil {
		if _, err := w.Write(e.Data); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.Name, err)
		}
		return nil
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", e.Path, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Name, err)
	}
	return nil
}
