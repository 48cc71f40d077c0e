// Пакет model — доменные модели Upload Console.
// Все модели — представления данных upload-сервиса, консоль их не хранит.
package model

import "strings"

// UserRecord — пользователь upload-сервиса (только чтение).
type UserRecord struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// FilterUsers возвращает пользователей, у которых полное имя или email
// содержат term (без учёта регистра). Пустой term возвращает всех.
func FilterUsers(users []UserRecord, term string) []UserRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users
	}
	result := make([]UserRecord, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FullName), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			result = append(result, u)
		}
	}
	return result
}
