// auth.go — вход, регистрация и выход.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	"github.com/bigkaa/goartstore/upload-console/internal/service"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/pages"
)

// AuthHandler — обработчики аутентификации.
type AuthHandler struct {
	auth   *service.AuthService
	table  guard.Table
	logger *slog.Logger
}

// NewAuthHandler создаёт AuthHandler.
func NewAuthHandler(auth *service.AuthService, table guard.Table, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		table:  table,
		logger: logger.With(slog.String("component", "ui.auth")),
	}
}

// HandleLoginPage — GET /login.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := pages.LoginData{Nav: buildNav(r, "login.title", "")}
	if r.URL.Query().Get("registered") != "" {
		data.Notice = "register.success"
	}
	renderPage(w, r, h.logger, http.StatusOK, pages.Login(data))
}

// HandleLogin — POST /login.
// После входа пользователь сразу переводится на страницу, которую
// таблица маршрутов выбирает для новой сессии.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	form := service.LoginForm{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Remember: r.FormValue("remember") != "",
	}

	token, err := h.auth.Login(r.Context(), form)
	if err != nil {
		renderPage(w, r, h.logger, errorStatus(err), pages.Login(pages.LoginData{
			Nav:      buildNav(r, "login.title", ""),
			Email:    form.Email,
			Remember: form.Remember,
			Error:    message(r, err, service.KeyLoginFailed),
		}))
		return
	}

	sess := uimiddleware.SessionFromRequest(r)
	follower := guard.Follow(sess, h.table, h.table.Login)
	sess.Login(token, form.Remember)
	follower.Stop()

	h.follow(w, r, follower, func() {
		// Токен не декодируется: сессия остаётся анонимной.
		h.logger.Warn("Токен входа не декодируется, сессия анонимная",
			slog.String("email", form.Email),
		)
		renderPage(w, r, h.logger, http.StatusOK, pages.Login(pages.LoginData{
			Nav:   buildNav(r, "login.title", ""),
			Email: form.Email,
		}))
	})
}

// HandleRegisterPage — GET /register.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.logger, http.StatusOK, pages.Register(pages.RegisterData{
		Nav: buildNav(r, "register.title", ""),
	}))
}

// HandleRegister — POST /register. Успех перенаправляет на вход.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form := service.RegisterForm{
		Email:           r.FormValue("email"),
		FullName:        r.FormValue("fullName"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}

	if err := h.auth.Register(r.Context(), form); err != nil {
		renderPage(w, r, h.logger, errorStatus(err), pages.Register(pages.RegisterData{
			Nav:      buildNav(r, "register.title", ""),
			Email:    form.Email,
			FullName: form.FullName,
			Error:    message(r, err, service.KeyRegisterFailed),
		}))
		return
	}

	guard.Navigate(w, r, h.table.Login+"?registered=1", http.StatusOK)
}

// HandleLogout — POST /logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromRequest(r)
	follower := guard.Follow(sess, h.table, r.URL.Path)
	sess.Logout()
	follower.Stop()

	h.follow(w, r, follower, func() {
		guard.Navigate(w, r, h.table.Login, http.StatusUnauthorized)
	})
}

// follow выполняет решение Follower; allow вызывается, если текущая
// страница остаётся доступной.
func (h *AuthHandler) follow(w http.ResponseWriter, r *http.Request, f *guard.Follower, allow func()) {
	d, ok := f.Decision()
	if !ok {
		allow()
		return
	}
	switch d.Kind {
	case guard.Redirect:
		status := http.StatusForbidden
		if d.Target == h.table.Login {
			status = http.StatusUnauthorized
		}
		guard.Navigate(w, r, d.Target, status)
	case guard.Forbidden:
		ForbiddenHandler(h.logger).ServeHTTP(w, r)
	default:
		allow()
	}
}
