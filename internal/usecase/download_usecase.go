package usecase

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/plastinin/docconverter/internal/domain"
	"go.uber.org/zap"
)

// DownloadUseCase выдача артефактов и их удаление после скачивания
type DownloadUseCase struct {
	fileStorage FileStorage
	scheduler   CleanupScheduler
	grace       time.Duration
	logger      *zap.Logger
}

// NewDownloadUseCase создаёт новый экземпляр DownloadUseCase
func NewDownloadUseCase(
	fileStorage FileStorage,
	scheduler CleanupScheduler,
	grace time.Duration,
	logger *zap.Logger,
) *DownloadUseCase {
	return &DownloadUseCase{
		fileStorage: fileStorage,
		scheduler:   scheduler,
		grace:       grace,
		logger:      logger,
	}
}

// Open открывает артефакт по имени из ссылки на скачивание
func (uc *DownloadUseCase) Open(name string) (*os.File, fs.FileInfo, error) {
	f, info, err := uc.fileStorage.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, info, nil
}

// Finish планирует удаление артефакта через grace после отдачи
func (uc *DownloadUseCase) Finish(ctx context.Context, name string) {
	if !domain.IsArtifactName(name) {
		return
	}

	if err := uc.scheduler.Schedule(ctx, name, uc.grace); err != nil {
		// Артефакт всё равно заберёт sweeper
		uc.logger.Error("Failed to schedule artifact cleanup",
			zap.String("name", name),
			zap.Error(err),
		)
		return
	}

	uc.logger.Debug("Artifact cleanup scheduled",
		zap.String("name", name),
		zap.Duration("after", uc.grace),
	)
}
