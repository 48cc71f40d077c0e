// Пакет server — HTTP-сервер Upload Console с graceful shutdown.
// Без TLS — TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apihandlers "github.com/bigkaa/goartstore/upload-console/internal/api/handlers"
	"github.com/bigkaa/goartstore/upload-console/internal/api/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/config"
	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	uihandlers "github.com/bigkaa/goartstore/upload-console/internal/ui/handlers"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/static"
)

// Components — обработчики и middleware, из которых собирается роутер.
type Components struct {
	Health    *apihandlers.HealthHandler
	Session   *uimiddleware.Session
	Guard     *guard.Guard
	Auth      *uihandlers.AuthHandler
	Dashboard *uihandlers.DashboardHandler
	Admin     *uihandlers.AdminHandler
}

// Server — HTTP-сервер Upload Console.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, c Components) *Server {
	// Long-poll фрагмента должен укладываться в WriteTimeout.
	writeTimeout := max(60*time.Second, cfg.LongPollTimeout+10*time.Second)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, c),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает chi-роутер консоли.
func NewRouter(logger *slog.Logger, c Components) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(logger))

	// Health и metrics проверяются Kubernetes напрямую, без сессии.
	router.Get("/health/live", c.Health.HealthLive)
	router.Get("/health/ready", c.Health.HealthReady)
	router.Get("/metrics", c.Health.GetMetrics)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		r.Use(c.Session.Middleware)
		r.Use(c.Guard.Middleware)

		r.Get("/", uihandlers.RootHandler(c.Guard.Table(), http.HandlerFunc(c.Dashboard.HandleDashboard)))
		r.Post("/set-language", uihandlers.HandleSetLanguage)

		r.Get("/login", c.Auth.HandleLoginPage)
		r.Post("/login", c.Auth.HandleLogin)
		r.Get("/register", c.Auth.HandleRegisterPage)
		r.Post("/register", c.Auth.HandleRegister)
		r.Post("/logout", c.Auth.HandleLogout)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", c.Dashboard.HandleDashboard)
			r.Get("/files", c.Dashboard.HandleFilesFragment)
			r.Post("/upload", c.Dashboard.HandleUpload)
			r.Get("/files/{id}", c.Dashboard.HandleContent)
			r.Get("/files/{id}/delete", c.Dashboard.HandleDeleteConfirm)
			r.Post("/files/{id}/delete", c.Dashboard.HandleDelete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", c.Admin.HandleAdmin)
			r.Route("/views/{view}", func(r chi.Router) {
				r.Get("/fragment", c.Admin.HandleFragment)
				r.Get("/users", c.Admin.HandleUsers)
				r.Post("/search", c.Admin.HandleSearch)
				r.Post("/filter", c.Admin.HandleFilter)
				r.Post("/date", c.Admin.HandleDate)
				r.Post("/clear", c.Admin.HandleClear)
				r.Post("/page-size", c.Admin.HandlePageSize)
				r.Post("/page", c.Admin.HandlePage)
				r.Post("/refresh", c.Admin.HandleRefresh)
				r.Post("/close", c.Admin.HandleClose)
				r.Post("/deselect", c.Admin.HandleDeselect)
				r.Post("/files/{id}/select", c.Admin.HandleSelect)
				r.Post("/files/{id}/delete", c.Admin.HandleDelete)
			})
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
