// Пакет guard — решение о доступности маршрута для текущей сессии.
//
// Проверка ролей здесь управляет только навигацией по консоли и не
// является границей безопасности: роль берётся из неподписанного для
// консоли токена, права на данные проверяет upload-API.
package guard

import (
	"strings"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/rbac"
	"github.com/bigkaa/goartstore/upload-console/internal/session"
)

// Access — требование маршрута к сессии.
type Access int

const (
	// AccessAny — маршрут доступен всем.
	AccessAny Access = iota
	// AccessGuest — только для анонимных (формы входа и регистрации).
	AccessGuest
	// AccessAuthenticated — только для вошедших.
	AccessAuthenticated
	// AccessRoot — корневой маршрут: вошедшие уходят на свою домашнюю страницу.
	AccessRoot
)

// Route — правило маршрута. Правило пути распространяется на его подпути.
type Route struct {
	Path   string
	Access Access
	// Roles — допустимые роли; пустой набор — любая роль.
	Roles []string
}

// Table — таблица маршрутов и целевые страницы перенаправлений.
type Table struct {
	Routes []Route
	// Home — домашняя страница ("/").
	Home string
	// Login — страница входа.
	Login string
	// Admin — домашняя страница администратора.
	Admin string
}

// Kind — тип решения.
type Kind int

const (
	// Allow — показать запрошенную страницу.
	Allow Kind = iota
	// Redirect — перейти на Decision.Target.
	Redirect
	// Forbidden — перенаправление зациклилось бы; показать страницу 403.
	Forbidden
)

// String возвращает имя решения для логов.
func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision — результат проверки маршрута.
type Decision struct {
	Kind   Kind
	Target string
}

// maxHops — предел цепочки перенаправлений в Resolve.
const maxHops = 5

// DefaultTable возвращает таблицу маршрутов консоли.
func DefaultTable() Table {
	return Table{
		Routes: []Route{
			{Path: "/login", Access: AccessGuest},
			{Path: "/register", Access: AccessGuest},
			{Path: "/", Access: AccessRoot, Roles: rbac.AllRoles()},
			{Path: "/dashboard", Access: AccessAuthenticated, Roles: rbac.AllRoles()},
			{Path: "/admin", Access: AccessAuthenticated, Roles: []string{rbac.RoleAdmin}},
			{Path: "/logout", Access: AccessAuthenticated},
			{Path: "/set-language", Access: AccessAny},
		},
		Home:  "/",
		Login: "/login",
		Admin: "/admin",
	}
}

// Decide — чистая функция решения для сессии snap и пути path (без query).
func Decide(t Table, snap session.Snapshot, path string) Decision {
	d := decide(t, snap, path)
	if d.Kind == Redirect && d.Target == path {
		return Decision{Kind: Forbidden}
	}
	return d
}

// Resolve следует по цепочке перенаправлений и возвращает итоговое решение.
// Для Redirect поле Target — конечная страница, на которой решение Allow.
func Resolve(t Table, snap session.Snapshot, path string) Decision {
	d := Decide(t, snap, path)
	if d.Kind != Redirect {
		return d
	}
	for range maxHops {
		next := Decide(t, snap, d.Target)
		if next.Kind != Redirect {
			return d
		}
		d = next
	}
	return d
}

func decide(t Table, snap session.Snapshot, path string) Decision {
	route, ok := t.match(path)
	if !ok {
		if snap.LoggedIn() {
			return Decision{Kind: Redirect, Target: t.Home}
		}
		return Decision{Kind: Redirect, Target: t.Login}
	}

	switch route.Access {
	case AccessAny:
		return Decision{Kind: Allow}
	case AccessGuest:
		if snap.LoggedIn() {
			return Decision{Kind: Redirect, Target: t.Home}
		}
		return Decision{Kind: Allow}
	}

	// AccessAuthenticated и AccessRoot
	if !snap.LoggedIn() {
		return Decision{Kind: Redirect, Target: t.Login}
	}
	if !rbac.HasAnyRole(snap.Role(), route.Roles) {
		return Decision{Kind: Redirect, Target: t.Home}
	}
	// Корень: администратор уходит на свою страницу, остальные видят панель на месте.
	if route.Access == AccessRoot && rbac.IsAdmin(snap.Role()) {
		return Decision{Kind: Redirect, Target: t.Admin}
	}
	return Decision{Kind: Allow}
}

// match ищет самое длинное правило, покрывающее path.
// Правило "/" покрывает только сам корень.
func (t Table) match(path string) (Route, bool) {
	var (
		best  Route
		found bool
	)
	for _, r := range t.Routes {
		if !covers(r.Path, path) {
			continue
		}
		if !found || len(r.Path) > len(best.Path) {
			best, found = r, true
		}
	}
	return best, found
}

func covers(prefix, path string) bool {
	if path == prefix {
		return true
	}
	if prefix == "/" {
		return false
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
