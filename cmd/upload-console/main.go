// Точка входа Upload Console — браузерной консоли сервиса загрузки файлов.
// Загружает конфигурацию, создаёт клиент upload-API и сервисный слой,
// шифрование cookie токена, таблицу маршрутов и реестр административных
// представлений, запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	apihandlers "github.com/bigkaa/goartstore/upload-console/internal/api/handlers"
	"github.com/bigkaa/goartstore/upload-console/internal/config"
	"github.com/bigkaa/goartstore/upload-console/internal/gateway"
	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
	"github.com/bigkaa/goartstore/upload-console/internal/server"
	"github.com/bigkaa/goartstore/upload-console/internal/service"
	"github.com/bigkaa/goartstore/upload-console/internal/tokenstore"
	uihandlers "github.com/bigkaa/goartstore/upload-console/internal/ui/handlers"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/views"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Upload Console запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	// Предупреждения о дефолтных значениях
	if os.Getenv("UC_DEPHEALTH_GROUP") == "" {
		logger.Warn("UC_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("UC_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 3. i18n — каталоги сообщений
	bundle := i18n.Init(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки каталогов i18n", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Клиент upload-API
	apiClient, err := gateway.New(gateway.Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		CACertPath: cfg.APICACertPath,
	}, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента upload-API", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Сервисный слой
	authSvc := service.NewAuthService(apiClient, logger)
	fileSvc := service.NewFileService(apiClient, cfg.MaxUploadSize, logger)
	userSvc := service.NewUserService(apiClient, cfg.UsersCacheTTL, logger)

	// 6. Cookie токена (AES-256-GCM)
	sealer, err := tokenstore.NewSealer(cfg.SessionSecret)
	if err != nil {
		logger.Error("Ошибка создания шифрования cookie", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cookies := tokenstore.NewCookies(sealer, tokenstore.CookieOptions{
		Secure:         cfg.CookieSecure,
		RememberMaxAge: cfg.RememberMaxAge,
	})

	// 7. Таблица маршрутов и Route Guard
	table := guard.DefaultTable()
	routeGuard := guard.New(table, uihandlers.ForbiddenHandler(logger), logger)

	// 8. Реестр административных представлений
	registry := views.NewRegistry(fileSvc.Fetcher, views.Options{
		Size: cfg.ViewCacheSize,
		TTL:  cfg.ViewTTL,
		Machine: listquery.Options{
			PageSize:     cfg.AdminPageSize,
			Debounce:     cfg.SearchDebounce,
			FetchTimeout: cfg.APITimeout,
		},
	}, logger)

	// 9. topologymetrics — мониторинг upload-API
	ctx := context.Background()
	var healthSource apihandlers.HealthSource
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"upload-console",
		cfg.DephealthGroup,
		cfg.APIHealthURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("health_url", cfg.APIHealthURL()),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
		healthSource = dephealthSvc
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, server.Components{
		Health:    apihandlers.NewHealthHandler(healthSource, service.UpstreamHealthy),
		Session:   uimiddleware.NewSession(cookies, logger),
		Guard:     routeGuard,
		Auth:      uihandlers.NewAuthHandler(authSvc, table, logger),
		Dashboard: uihandlers.NewDashboardHandler(fileSvc, cfg.DashboardRefresh, cfg.MaxUploadSize, logger),
		Admin:     uihandlers.NewAdminHandler(fileSvc, userSvc, registry, cfg.LongPollTimeout, logger),
	})
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Остановка фоновых задач
	logger.Info("Останавливаем фоновые задачи...")

	registry.Purge()
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Upload Console остановлен")
}
