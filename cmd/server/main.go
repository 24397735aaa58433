package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plastinin/docconverter/internal/adapter/converter"
	"github.com/plastinin/docconverter/internal/adapter/http/handler"
	httpmiddleware "github.com/plastinin/docconverter/internal/adapter/http/middleware"
	"github.com/plastinin/docconverter/internal/adapter/http/view"
	"github.com/plastinin/docconverter/internal/adapter/ocr"
	"github.com/plastinin/docconverter/internal/adapter/pdf"
	"github.com/plastinin/docconverter/internal/adapter/queue"
	"github.com/plastinin/docconverter/internal/adapter/storage"
	"github.com/plastinin/docconverter/internal/config"
	"github.com/plastinin/docconverter/internal/usecase"
	"github.com/plastinin/docconverter/pkg/logger"
	"go.uber.org/zap"

	apphttp "github.com/plastinin/docconverter/internal/adapter/http"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Инициализируем логгер
	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	log.Info("Starting docconverter",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("renderer", cfg.Converter.Renderer),
		zap.String("cleanup_backend", cfg.Cleanup.Backend),
	)

	// Временное хранилище
	fileStorage, err := storage.NewTempStorage(cfg.Storage.TempDir(), log.Named("storage"))
	if err != nil {
		log.Fatal("Failed to init temp storage", zap.Error(err))
	}
	log.Info("Temp storage ready", zap.String("dir", fileStorage.Dir()))

	// Отложенное удаление артефактов после скачивания
	var (
		scheduler usecase.CleanupScheduler
		stopClean func()
	)
	switch cfg.Cleanup.Backend {
	case "asynq":
		producer := queue.NewCleanupProducer(cfg.Redis)
		consumer := queue.NewCleanupConsumer(cfg.Redis, cfg.Cleanup, fileStorage, log)
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start cleanup consumer", zap.Error(err))
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))

		scheduler = producer
		stopClean = func() {
			consumer.Stop()
			producer.Close()
		}
	default:
		timers := storage.NewTimerScheduler(fileStorage, log.Named("cleanup"))
		scheduler = timers
		stopClean = func() { timers.Close() }
	}

	// Уборка артефактов, которые так и не скачали
	sweeper, err := storage.NewSweeper(fileStorage, cfg.Storage.SweepSchedule, cfg.Storage.ArtifactTTL, log)
	if err != nil {
		log.Fatal("Failed to init sweeper", zap.Error(err))
	}
	sweeper.Start()

	// Внешний конвертер
	locator := converter.NewProbeLocator(cfg.Converter.SofficePath)
	if bin, err := locator.Locate(); err != nil {
		// Не фатально: PDF операции и OCR изображений работают без soffice
		log.Warn("LibreOffice not found, office conversions will fail", zap.Error(err))
	} else {
		log.Info("LibreOffice found", zap.String("path", bin))
	}
	invoker := converter.NewSofficeInvoker(locator, cfg.Converter.Timeout, log.Named("soffice"))

	var renderer usecase.PageRenderer
	if cfg.Converter.Renderer == "fitz" {
		renderer = pdf.NewFitzRenderer()
	} else {
		renderer = pdf.NewSofficeRenderer(invoker)
	}

	// Инициализируем use cases
	conversionUC := usecase.NewConversionUseCase(
		fileStorage,
		invoker,
		pdf.NewProcessor(),
		renderer,
		ocr.NewTesseractRecognizer(cfg.OCR.Language, log.Named("ocr")),
		storage.NewZipArchiver(),
		log,
	)
	downloadUC := usecase.NewDownloadUseCase(fileStorage, scheduler, cfg.Storage.DownloadGrace, log)

	// Инициализируем handlers
	pages, err := view.New()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}
	handlers := apphttp.Handlers{
		Pages:    handler.NewPageHandler(pages, cfg.Upload.MaxFiles, cfg.Upload.MaxFileSize, cfg.Storage.ArtifactTTL, log),
		Convert:  handler.NewConvertHandler(conversionUC, pages, cfg.Upload, log),
		Download: handler.NewDownloadHandler(downloadUC, pages, log),
		Health:   handler.NewHealthHandler(locator),
	}
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, log.Named("ratelimit"))

	// Создаём роутер
	router := apphttp.NewRouter(handlers, limiter, pages, cfg.Server.TrustProxy, log)

	// Создаём HTTP сервер
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", cfg.Server.Addr()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	sweeper.Stop()
	stopClean()

	log.Info("Server stopped")
}
