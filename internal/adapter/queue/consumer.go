package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/plastinin/docconverter/internal/config"
	"github.com/plastinin/docconverter/internal/domain"
	"go.uber.org/zap"
)

// ArtifactRemover удаляет файл хранилища по имени
type ArtifactRemover interface {
	RemoveName(name string)
}

// CleanupConsumer выполняет отложенные удаления артефактов
type CleanupConsumer struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	remover ArtifactRemover
	logger  *zap.Logger
}

// NewCleanupConsumer создаёт новый экземпляр CleanupConsumer.
// Воркер работает в процессе сервера: файлы лежат на его диске.
func NewCleanupConsumer(
	redis config.RedisConfig,
	cfg config.CleanupConfig,
	remover ArtifactRemover,
	logger *zap.Logger,
) *CleanupConsumer {
	server := asynq.NewServer(
		redisOpt(redis),
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cleanupQueue: 1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	consumer := &CleanupConsumer{
		server:  server,
		mux:     asynq.NewServeMux(),
		remover: remover,
		logger:  logger,
	}

	consumer.mux.HandleFunc(TypeArtifactCleanup, consumer.handleArtifactCleanup)

	return consumer
}

// Start запускает обработку задач
func (c *CleanupConsumer) Start() error {
	c.logger.Info("Starting cleanup consumer")
	return c.server.Start(c.mux)
}

// Stop останавливает обработку задач
func (c *CleanupConsumer) Stop() {
	c.logger.Info("Stopping cleanup consumer")
	c.server.Stop()
	c.server.Shutdown()
}

// handleArtifactCleanup удаляет артефакт из задачи
func (c *CleanupConsumer) handleArtifactCleanup(_ context.Context, t *asynq.Task) error {
	var payload ArtifactCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		c.logger.Error("Failed to unmarshal payload",
			zap.Error(err),
			zap.ByteString("payload", t.Payload()),
		)
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if !domain.IsArtifactName(payload.Name) {
		c.logger.Warn("Invalid artifact name in cleanup task",
			zap.String("name", payload.Name),
		)
		return fmt.Errorf("invalid artifact name %q: %w", payload.Name, asynq.SkipRetry)
	}

	c.remover.RemoveName(payload.Name)
	c.logger.Debug("Artifact removed", zap.String("name", payload.Name))

	return nil
}

// asynqLogger адаптер логгера для asynq
type asynqLogger struct {
	logger *zap.SugaredLogger
}

func newAsynqLogger(logger *zap.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.Named("asynq").Sugar()}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.logger.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.logger.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.logger.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.logger.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal(args...) }
