package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimerScheduler откладывает удаление артефактов на таймерах процесса
type TimerScheduler struct {
	storage *TempStorage
	logger  *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewTimerScheduler создаёт планировщик удаления
func NewTimerScheduler(storage *TempStorage, logger *zap.Logger) *TimerScheduler {
	return &TimerScheduler{
		storage: storage,
		logger:  logger,
		timers:  make(map[string]*time.Timer),
	}
}

// Schedule удаляет артефакт name через after.
// Повторный вызов для того же имени переносит срок.
func (s *TimerScheduler) Schedule(_ context.Context, name string, after time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.storage.RemoveName(name)
		return nil
	}

	s.scheduleLocked(name, after)
	return nil
}

func (s *TimerScheduler) scheduleLocked(name string, after time.Duration) {
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(after, func() {
		s.mu.Lock()
		// Срок перенесли, пока этот таймер ждал блокировку
		if s.timers[name] != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, name)
		s.mu.Unlock()

		s.storage.RemoveName(name)
		s.logger.Debug("Artifact removed", zap.String("name", name))
	})
	s.timers[name] = t
}

// Pending количество ожидающих удалений
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close останавливает таймеры и сразу удаляет всё, что было запланировано
func (s *TimerScheduler) Close() error {
	s.mu.Lock()
	names := make([]string, 0, len(s.timers))
	for name, t := range s.timers {
		// Сработавший таймер увидит пустую карту и ничего не удалит
		t.Stop()
		names = append(names, name)
	}
	s.timers = make(map[string]*time.Timer)
	s.closed = true
	s.mu.Unlock()

	for _, name := range names {
		s.storage.RemoveName(name)
	}
	return nil
}
