package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plastinin/docconverter/internal/domain"
	"go.uber.org/zap"
)

// TempStorage временное файловое хранилище поверх каталога ОС.
// Каждый путь выдаётся одному запросу и больше нигде не используется.
type TempStorage struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewTempStorage создаёт хранилище в каталоге dir
func NewTempStorage(dir string, logger *zap.Logger) (*TempStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve temp dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &TempStorage{
		dir:    abs,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Dir возвращает каталог хранилища
func (s *TempStorage) Dir() string {
	return s.dir
}

// Allocate выдаёт уникальный путь: prefix_<unix ms>_<random>.ext
func (s *TempStorage) Allocate(prefix, ext string) (name, path string) {
	ext = strings.TrimPrefix(ext, ".")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name = fmt.Sprintf("%s_%d_%s", prefix, s.now().UnixMilli(), suffix)
	if ext != "" {
		name += "." + ext
	}
	return name, filepath.Join(s.dir, name)
}

// Save сохраняет загрузку целиком и возвращает её путь
func (s *TempStorage) Save(ctx context.Context, ext string, reader io.Reader) (string, error) {
	// Для загрузок достаточно uuid: timestamp в имени ничего не добавляет
	name := domain.PrefixUpload + "_" + uuid.NewString()
	if ext = strings.TrimPrefix(strings.ToLower(ext), "."); ext != "" {
		name += "." + ext
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: reader}); err != nil {
		f.Close()
		s.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.Remove(path)
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	return path, nil
}

// WriteFile пишет буфер целиком
func (s *TempStorage) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Exists проверяет наличие файла
func (s *TempStorage) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Rename перемещает файл внутри хранилища
func (s *TempStorage) Rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to move %s: %w", filepath.Base(from), err)
	}
	return nil
}

// MkdirWork создаёт рабочий каталог внутри хранилища для вывода
// внешних инструментов. Удаляется через RemoveDir.
func (s *TempStorage) MkdirWork() (string, error) {
	dir, err := os.MkdirTemp(s.dir, domain.WorkDirPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	return dir, nil
}

// RemoveDir удаляет рабочий каталог целиком
func (s *TempStorage) RemoveDir(dir string) {
	if dir == "" || filepath.Dir(dir) != s.dir || !domain.IsWorkDirName(filepath.Base(dir)) {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Debug("Failed to remove work dir",
			zap.String("path", dir),
			zap.Error(err),
		)
	}
}

// Remove удаляет файл; отсутствие файла ошибкой не считается
func (s *TempStorage) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("Failed to remove temp file",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

// RemoveAll удаляет все перечисленные файлы
func (s *TempStorage) RemoveAll(paths []string) {
	for _, p := range paths {
		s.Remove(p)
	}
}

// RemoveName удаляет артефакт по имени (используется планировщиками)
func (s *TempStorage) RemoveName(name string) {
	if !domain.IsOwnedName(name) {
		s.logger.Warn("Refusing to remove foreign file", zap.String("name", name))
		return
	}
	s.Remove(filepath.Join(s.dir, name))
}

// Open открывает артефакт для скачивания
func (s *TempStorage) Open(name string) (*os.File, fs.FileInfo, error) {
	if !domain.IsArtifactName(name) {
		return nil, nil, domain.ErrArtifactNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrArtifactNotFound
		}
		return nil, nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat artifact: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, domain.ErrArtifactNotFound
	}

	return f, info, nil
}

// List возвращает имена файлов, созданных сервером
func (s *TempStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && domain.IsOwnedName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// WorkDirs возвращает пути рабочих каталогов сервера
func (s *TempStorage) WorkDirs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && domain.IsWorkDirName(e.Name()) {
			dirs = append(dirs, filepath.Join(s.dir, e.Name()))
		}
	}
	return dirs, nil
}

// ctxReader прерывает копирование при отмене запроса
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
