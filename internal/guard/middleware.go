package guard

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/rbac"
	"github.com/bigkaa/goartstore/upload-console/internal/session"
)

// Заголовки обмена со скриптом страницы.
const (
	// HeaderScriptRequest — признак фонового запроса скрипта страницы.
	HeaderScriptRequest = "X-Console-Request"
	// HeaderRedirect — страница, на которую скрипт должен перейти сам.
	HeaderRedirect = "X-Console-Redirect"
)

// Guard применяет таблицу маршрутов к HTTP-запросам.
type Guard struct {
	table     Table
	forbidden http.Handler
	logger    *slog.Logger
}

// New создаёт Guard. forbidden отрисовывает страницу 403.
func New(table Table, forbidden http.Handler, logger *slog.Logger) *Guard {
	return &Guard{
		table:     table,
		forbidden: forbidden,
		logger:    logger.With(slog.String("component", "route_guard")),
	}
}

// Table возвращает таблицу маршрутов.
func (g *Guard) Table() Table {
	return g.table
}

// Middleware проверяет каждый запрос. Context сессии должен быть
// положен в запрос раньше (см. ui/middleware); без него сессия анонимная.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var snap session.Snapshot
		if sess, ok := session.FromContext(r.Context()); ok {
			snap = sess.Current()
		}

		d := Resolve(g.table, snap, r.URL.Path)
		switch d.Kind {
		case Allow:
			next.ServeHTTP(w, r)
		case Redirect:
			g.logger.Debug("Перенаправление маршрута",
				slog.String("path", r.URL.Path),
				slog.String("target", d.Target),
			)
			Navigate(w, r, d.Target, g.redirectStatus(d.Target))
		default:
			g.logger.Info("Доступ к маршруту запрещён",
				slog.String("path", r.URL.Path),
				slog.String("role", snap.Role()),
				slog.Bool("known_role", rbac.IsValidRole(snap.Role())),
			)
			g.forbidden.ServeHTTP(w, r)
		}
	})
}

func (g *Guard) redirectStatus(target string) int {
	if target == g.table.Login {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// Navigate перенаправляет браузер на target.
// Обычный запрос получает 302 (303 для POST), фоновый запрос скрипта —
// статус scriptStatus и заголовок X-Console-Redirect.
func Navigate(w http.ResponseWriter, r *http.Request, target string, scriptStatus int) {
	if IsScriptRequest(r) {
		w.Header().Set(HeaderRedirect, target)
		w.WriteHeader(scriptStatus)
		return
	}
	status := http.StatusFound
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, target, status)
}

// IsScriptRequest сообщает, что запрос отправлен скриптом страницы.
func IsScriptRequest(r *http.Request) bool {
	return r.Header.Get(HeaderScriptRequest) != ""
}
