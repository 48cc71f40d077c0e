// Пакет config — загрузка и валидация конфигурации Upload Console
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Upload Console.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Upload-API ---

	// Базовый адрес upload-API (например, http://localhost:3150/api)
	APIBaseURL string
	// Таймаут запроса к upload-API
	APITimeout time.Duration
	// Путь к CA-сертификату для TLS-соединений с upload-API (опционально)
	APICACertPath string
	// Путь health endpoint upload-API относительно хоста
	APIHealthPath string

	// --- Сессия ---

	// Ключ шифрования cookie токена (пустой — случайный при старте)
	SessionSecret string
	// Флаг Secure для cookie (true за HTTPS)
	CookieSecure bool
	// Время жизни cookie «запомнить меня»
	RememberMaxAge time.Duration

	// --- Списки ---

	// Окно тишины поиска в административном списке
	SearchDebounce time.Duration
	// Интервал автообновления списка файлов пользователя
	DashboardRefresh time.Duration
	// Начальный размер страницы административного списка
	AdminPageSize int
	// Максимум одновременно открытых административных представлений
	ViewCacheSize int
	// Время жизни неактивного административного представления
	ViewTTL time.Duration
	// Максимальная длительность long-poll запроса фрагмента
	LongPollTimeout time.Duration
	// Время кеширования списка пользователей
	UsersCacheTTL time.Duration
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64

	// --- Мониторинг зависимостей ---

	// Группа сервиса в topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// UC_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("UC_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("UC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("UC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// UC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("UC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("UC_LOG_LEVEL: %w", err)
	}

	// UC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("UC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("UC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Upload-API ---

	// UC_API_BASE_URL — базовый адрес API (по умолчанию http://localhost:3150/api)
	cfg.APIBaseURL = strings.TrimRight(getEnvDefault("UC_API_BASE_URL", "http://localhost:3150/api"), "/")
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("UC_API_BASE_URL: недопустимый адрес %q, ожидается http(s)://host[:port]/path", cfg.APIBaseURL)
	}

	// UC_API_TIMEOUT — таймаут запроса (по умолчанию 30s)
	cfg.APITimeout, err = getEnvDuration("UC_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UC_API_TIMEOUT: %w", err)
	}

	// UC_API_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.APICACertPath = getEnvDefault("UC_API_CA_CERT_PATH", "")

	// UC_API_HEALTH_PATH — health endpoint (по умолчанию /health)
	cfg.APIHealthPath = getEnvDefault("UC_API_HEALTH_PATH", "/health")
	if !strings.HasPrefix(cfg.APIHealthPath, "/") {
		return nil, fmt.Errorf("UC_API_HEALTH_PATH: путь %q должен начинаться с /", cfg.APIHealthPath)
	}

	// --- Сессия ---

	// UC_SESSION_SECRET — ключ шифрования cookie (опционально)
	cfg.SessionSecret = getEnvDefault("UC_SESSION_SECRET", "")

	// UC_COOKIE_SECURE — флаг Secure (по умолчанию false)
	cfg.CookieSecure, err = getEnvBool("UC_COOKIE_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("UC_COOKIE_SECURE: %w", err)
	}

	// UC_REMEMBER_MAX_AGE — срок «запомнить меня» (по умолчанию 720h)
	cfg.RememberMaxAge, err = getEnvDuration("UC_REMEMBER_MAX_AGE", 720*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("UC_REMEMBER_MAX_AGE: %w", err)
	}

	// --- Списки ---

	// UC_SEARCH_DEBOUNCE — окно тишины поиска (по умолчанию 400ms)
	cfg.SearchDebounce, err = getEnvDuration("UC_SEARCH_DEBOUNCE", 400*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("UC_SEARCH_DEBOUNCE: %w", err)
	}

	// UC_DASHBOARD_REFRESH — автообновление списка (по умолчанию 60s)
	cfg.DashboardRefresh, err = getEnvDuration("UC_DASHBOARD_REFRESH", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UC_DASHBOARD_REFRESH: %w", err)
	}

	// UC_ADMIN_PAGE_SIZE — начальный размер страницы (по умолчанию 10)
	cfg.AdminPageSize, err = getEnvInt("UC_ADMIN_PAGE_SIZE", listquery.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("UC_ADMIN_PAGE_SIZE: %w", err)
	}
	if !listquery.ValidPageSize(cfg.AdminPageSize) {
		return nil, fmt.Errorf("UC_ADMIN_PAGE_SIZE: недопустимое значение %d, допустимые: %v", cfg.AdminPageSize, listquery.PageSizes)
	}

	// UC_VIEW_CACHE_SIZE — максимум представлений (по умолчанию 1000)
	cfg.ViewCacheSize, err = getEnvInt("UC_VIEW_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("UC_VIEW_CACHE_SIZE: %w", err)
	}
	if cfg.ViewCacheSize < 1 {
		return nil, fmt.Errorf("UC_VIEW_CACHE_SIZE: значение %d должно быть положительным", cfg.ViewCacheSize)
	}

	// UC_VIEW_TTL — время жизни представления (по умолчанию 30m)
	cfg.ViewTTL, err = getEnvDuration("UC_VIEW_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("UC_VIEW_TTL: %w", err)
	}

	// UC_LONGPOLL_TIMEOUT — длительность long-poll (по умолчанию 25s)
	cfg.LongPollTimeout, err = getEnvDuration("UC_LONGPOLL_TIMEOUT", 25*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UC_LONGPOLL_TIMEOUT: %w", err)
	}

	// UC_USERS_CACHE_TTL — кеш списка пользователей (по умолчанию 30s)
	cfg.UsersCacheTTL, err = getEnvDuration("UC_USERS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UC_USERS_CACHE_TTL: %w", err)
	}

	// UC_MAX_UPLOAD_SIZE — максимальный размер файла в байтах (по умолчанию 32 MiB)
	cfg.MaxUploadSize, err = getEnvInt64("UC_MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("UC_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize < 1 {
		return nil, fmt.Errorf("UC_MAX_UPLOAD_SIZE: значение %d должно быть положительным", cfg.MaxUploadSize)
	}

	// --- Мониторинг зависимостей ---

	// UC_DEPHEALTH_GROUP — группа сервиса (по умолчанию upload-console)
	cfg.DephealthGroup = getEnvDefault("UC_DEPHEALTH_GROUP", "upload-console")

	// UC_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("UC_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UC_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// UC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("UC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("UC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// APIHealthURL возвращает адрес health endpoint upload-API:
// схема и хост из APIBaseURL, путь из APIHealthPath.
func (c *Config) APIHealthURL() string {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return c.APIBaseURL + c.APIHealthPath
	}
	return u.Scheme + "://" + u.Host + c.APIHealthPath
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 — как getEnvInt, для размеров в байтах.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает логическое значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q (используйте true или false)", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
