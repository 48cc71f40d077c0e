// Пакет rbac — закрытый набор ролей консоли и проверки принадлежности.
// Роль берётся из claim "role" токена. Проверки на стороне консоли
// управляют только навигацией; авторизацию выполняет upload-API.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// AllRoles возвращает все роли консоли в порядке возрастания привилегий.
func AllRoles() []string {
	return []string{RoleUser, RoleAdmin}
}

// IsValidRole проверяет, является ли строка допустимой ролью.
// Сравнение чувствительно к регистру: API выдаёт роли в верхнем регистре.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// HasAnyRole проверяет, входит ли role в набор allowed.
// Пустой набор означает «любая роль».
func HasAnyRole(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// IsAdmin — сокращение для проверки роли ADMIN.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}
