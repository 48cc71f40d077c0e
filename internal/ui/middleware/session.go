// Пакет middleware — HTTP middleware для UI Upload Console.
// session.go — Session Context на каждый запрос поверх cookie токена.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/goartstore/upload-console/internal/session"
	"github.com/bigkaa/goartstore/upload-console/internal/tokenstore"
)

// Session — middleware, строящий session.Context из cookie запроса.
// Токен читается один раз; Login/Logout в обработчике записывают cookie в ответ.
type Session struct {
	cookies *tokenstore.Cookies
	logger  *slog.Logger
}

// NewSession создаёт Session middleware.
func NewSession(cookies *tokenstore.Cookies, logger *slog.Logger) *Session {
	return &Session{
		cookies: cookies,
		logger:  logger.With(slog.String("component", "ui_session_middleware")),
	}
}

// Middleware помещает session.Context в контекст запроса.
func (s *Session) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := tokenstore.New(s.cookies.Backend(w, r), s.logger)
		sess := session.New(store, s.logger)
		next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
	})
}

// SessionFromRequest возвращает session.Context запроса.
// Без middleware возвращается анонимный Context в памяти.
func SessionFromRequest(r *http.Request) *session.Context {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return session.New(tokenstore.New(tokenstore.NewMemoryBackend(), slog.Default()), slog.Default())
}
