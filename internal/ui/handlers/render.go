// Пакет handlers — HTTP-обработчики UI Upload Console.
// render.go — общие помощники рендеринга.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/upload-console/internal/api/errors"
	"github.com/bigkaa/goartstore/upload-console/internal/domain/rbac"
	"github.com/bigkaa/goartstore/upload-console/internal/gateway"
	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	"github.com/bigkaa/goartstore/upload-console/internal/service"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/pages"
)

// renderPage отрисовывает компонент со статусом status.
func renderPage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// buildNav собирает данные шапки из сессии запроса.
func buildNav(r *http.Request, title, active string) pages.Nav {
	nav := pages.Nav{
		Title:     title,
		Active:    active,
		Lang:      i18n.LangFromContext(r.Context()),
		Languages: i18n.Languages,
		Path:      r.URL.RequestURI(),
	}
	if id, ok := uimiddleware.SessionFromRequest(r).Current().Identity(); ok {
		nav.User = &pages.NavUser{
			DisplayName: id.DisplayName(),
			Avatar:      id.ProfileImage(),
			IsAdmin:     rbac.IsAdmin(id.Role),
		}
	}
	return nav
}

// message переводит ошибку в текст для пользователя.
func message(r *http.Request, err error, fallbackKey string) string {
	return i18n.T(r.Context(), service.UserMessage(err, fallbackKey))
}

// errorStatus — HTTP-статус ответа на ошибку операции.
func errorStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, service.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// writeScriptError отвечает фоновому запросу JSON-ошибкой.
func writeScriptError(w http.ResponseWriter, r *http.Request, err error, fallbackKey string) {
	msg := message(r, err, fallbackKey)
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		apierrors.Validation(w, ve.Field, msg)
		return
	}
	apierrors.Upstream(w, gateway.StatusOf(err), msg)
}

// fileID извлекает {id} из пути.
func fileID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// safeReturn возвращает локальный путь возврата или fallback.
func safeReturn(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

// ForbiddenHandler отрисовывает страницу 403 (фоновому запросу — JSON).
func ForbiddenHandler(logger *slog.Logger) http.Handler {
	logger = logger.With(slog.String("component", "ui.forbidden"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if guard.IsScriptRequest(r) {
			apierrors.Forbidden(w, i18n.T(r.Context(), "forbidden.message"))
			return
		}
		renderPage(w, r, logger, http.StatusForbidden,
			pages.Forbidden(pages.ForbiddenData{Nav: buildNav(r, "forbidden.title", "")}))
	})
}
