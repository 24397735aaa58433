package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Converter ConverterConfig
	OCR       OCRConfig
	Cleanup   CleanupConfig
	Redis     RedisConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"3001"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// Доверять X-Forwarded-For / X-Real-IP только за своим прокси
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type UploadConfig struct {
	// Лимит на один файл, 10 MB
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"10485760"`
	MaxFiles    int   `env:"UPLOAD_MAX_FILES" envDefault:"10"`
}

// MaxRequestSize верхняя граница тела multipart запроса
func (u UploadConfig) MaxRequestSize() int64 {
	return u.MaxFileSize*int64(u.MaxFiles) + 1<<20
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"15"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
}

type StorageConfig struct {
	// Пусто: подкаталог docconverter в системном temp каталоге
	Dir           string        `env:"TEMP_DIR" envDefault:""`
	DownloadGrace time.Duration `env:"DOWNLOAD_GRACE" envDefault:"5s"`
	ArtifactTTL   time.Duration `env:"ARTIFACT_TTL" envDefault:"1h"`
	SweepSchedule string        `env:"ARTIFACT_SWEEP_SCHEDULE" envDefault:"@every 10m"`
}

// TempDir возвращает каталог временных файлов
func (s StorageConfig) TempDir() string {
	if s.Dir == "" {
		return filepath.Join(os.TempDir(), "docconverter")
	}
	return s.Dir
}

type ConverterConfig struct {
	SofficePath string        `env:"SOFFICE_PATH" envDefault:""`
	Timeout     time.Duration `env:"CONVERTER_TIMEOUT" envDefault:"2m"`
	// soffice или fitz
	Renderer string `env:"RENDERER" envDefault:"soffice"`
}

type OCRConfig struct {
	Language string `env:"OCR_LANGUAGE" envDefault:"eng"`
}

type CleanupConfig struct {
	// timer или asynq
	Backend     string `env:"CLEANUP_BACKEND" envDefault:"timer"`
	Concurrency int    `env:"CLEANUP_CONCURRENCY" envDefault:"2"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// json или console
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Converter.Renderer {
	case "soffice", "fitz":
	default:
		return fmt.Errorf("unknown renderer %q", c.Converter.Renderer)
	}

	switch c.Cleanup.Backend {
	case "timer", "asynq":
	default:
		return fmt.Errorf("unknown cleanup backend %q", c.Cleanup.Backend)
	}

	if c.Upload.MaxFiles < 1 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be positive")
	}
	if c.Upload.MaxFileSize < 1 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}

	return nil
}
