package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/plastinin/docconverter/internal/config"
)

// Типы задач
const (
	TypeArtifactCleanup = "artifact:cleanup"
)

// Очередь отложенного удаления
const cleanupQueue = "cleanup"

// ArtifactCleanupPayload данные задачи на удаление артефакта
type ArtifactCleanupPayload struct {
	Name string `json:"name"`
}

// NewArtifactCleanupTask собирает задачу удаления артефакта name
func NewArtifactCleanupTask(name string, after time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(ArtifactCleanupPayload{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return asynq.NewTask(TypeArtifactCleanup, payload,
		asynq.ProcessIn(after),
		asynq.TaskID(TypeArtifactCleanup+":"+name), // Одно удаление на артефакт
		asynq.MaxRetry(3),
		asynq.Queue(cleanupQueue),
	), nil
}

// CleanupProducer планирует удаление артефактов через Redis.
// В отличие от таймеров процесса переживает перезапуск сервера.
type CleanupProducer struct {
	client *asynq.Client
}

// NewCleanupProducer создаёт новый экземпляр CleanupProducer
func NewCleanupProducer(cfg config.RedisConfig) *CleanupProducer {
	client := asynq.NewClient(redisOpt(cfg))
	return &CleanupProducer{client: client}
}

// Schedule ставит удаление артефакта name через after
func (p *CleanupProducer) Schedule(ctx context.Context, name string, after time.Duration) error {
	task, err := NewArtifactCleanupTask(name, after)
	if err != nil {
		return err
	}

	_, err = p.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Удаление уже запланировано предыдущим скачиванием
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue cleanup: %w", err)
	}

	return nil
}

// Close закрывает соединение
func (p *CleanupProducer) Close() error {
	return p.client.Close()
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
