package handlers

import (
	"net/http"

	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
)

// RootHandler — GET /: панель на месте или переход на страницу по роли.
// Обычно запрос перенаправляет Guard; обработчик нужен без него.
func RootHandler(table guard.Table, dashboard http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := guard.Resolve(table, uimiddleware.SessionFromRequest(r).Current(), table.Home)
		switch d.Kind {
		case guard.Allow:
			dashboard.ServeHTTP(w, r)
		case guard.Redirect:
			status := http.StatusForbidden
			if d.Target == table.Login {
				status = http.StatusUnauthorized
			}
			guard.Navigate(w, r, d.Target, status)
		default:
			guard.Navigate(w, r, table.Login, http.StatusUnauthorized)
		}
	}
}
