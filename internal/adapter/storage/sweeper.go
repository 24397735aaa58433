package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper периодически удаляет артефакты, которые так и не скачали
type Sweeper struct {
	storage *TempStorage
	ttl     time.Duration
	cron    *cron.Cron
	logger  *zap.Logger
}

// NewSweeper создаёт уборщик с cron расписанием (например "@every 10m")
func NewSweeper(storage *TempStorage, schedule string, ttl time.Duration, logger *zap.Logger) (*Sweeper, error) {
	s := &Sweeper{
		storage: storage,
		ttl:     ttl,
		cron:    cron.New(),
		logger:  logger.Named("sweeper"),
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start запускает расписание
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop останавливает расписание и ждёт текущий проход
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep удаляет файлы сервера старше ttl, возвращает число удалённых
func (s *Sweeper) Sweep() int {
	names, err := s.storage.List()
	if err != nil {
		s.logger.Error("Failed to list temp dir", zap.Error(err))
		return 0
	}

	cutoff := s.storage.now().Add(-s.ttl)
	removed := 0
	for _, name := range names {
		info, err := os.Stat(filepath.Join(s.storage.Dir(), name))
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.storage.RemoveName(name)
			removed++
		}
	}

	// Рабочие каталоги остаются только после падения процесса
	dirs, err := s.storage.WorkDirs()
	if err != nil {
		s.logger.Error("Failed to list work dirs", zap.Error(err))
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.storage.RemoveDir(dir)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Expired temp files removed", zap.Int("count", removed))
	}
	return removed
}
