package model

// Identity — представление пользователя, извлечённое из bearer-токена.
// Создаётся только декодером сессии; частично заполненных Identity не бывает.
type Identity struct {
	// ID — числовой идентификатор пользователя (claim "id")
	ID int64
	// Email — claim "email"
	Email string
	// Role — claim "role" (USER, ADMIN)
	Role string
	// FullName — claim "fullName", пустая строка если отсутствует
	FullName string
	// Extra — все остальные claims без изменений. Известные поля сюда не попадают.
	Extra map[string]any
}

// DisplayName возвращает полное имя, а если его нет — email.
func (i Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Email
}

// ProfileImage возвращает URL аватара из claim "profileImage", если это строка.
func (i Identity) ProfileImage() string {
	if v, ok := i.Extra["profileImage"].(string); ok {
		return v
	}
	return ""
}
