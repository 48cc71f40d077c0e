// Пакет tokenstore — хранение bearer-токена в одной из двух областей
// (долговременной или сессионной) в зависимости от флага «запомнить меня».
// Ошибки хранилища никогда не возвращаются вызывающему: недоступное
// хранилище трактуется как отсутствие токена.
package tokenstore

import (
	"log/slog"
)

// Key — постоянное имя, под которым хранится токен.
const Key = "upload_console_token"

// Scope — область хранения токена.
type Scope int

const (
	// ScopeSession — сессионная область (живёт до закрытия браузера).
	ScopeSession Scope = iota
	// ScopeDurable — долговременная область (переживает перезапуск браузера).
	ScopeDurable
)

// String возвращает имя области для логов.
func (s Scope) String() string {
	switch s {
	case ScopeDurable:
		return "durable"
	case ScopeSession:
		return "session"
	default:
		return "unknown"
	}
}

// Backend — физическое хранилище токена.
// Load возвращает пустую строку без ошибки, если в области ничего нет.
type Backend interface {
	Load(scope Scope) (string, error)
	Save(scope Scope, token string) error
	Delete(scope Scope) error
}

// Store — хранилище токена поверх Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New создаёт Store.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger.With(slog.String("component", "tokenstore")),
	}
}

// Set записывает токен в долговременную область при remember == true,
// иначе в сессионную. Другая область не очищается.
func (s *Store) Set(token string, remember bool) {
	scope := ScopeSession
	if remember {
		scope = ScopeDurable
	}
	if err := s.backend.Save(scope, token); err != nil {
		s.logger.Warn("Не удалось сохранить токен",
			slog.String("scope", scope.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Get возвращает токен. Долговременная область имеет приоритет над сессионной.
func (s *Store) Get() (string, bool) {
	for _, scope := range []Scope{ScopeDurable, ScopeSession} {
		token, err := s.backend.Load(scope)
		if err != nil {
			s.logger.Warn("Не удалось прочитать токен",
				slog.String("scope", scope.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if token != "" {
			return token, true
		}
	}
	return "", false
}

// Clear удаляет токен из обеих областей. Идемпотентен.
func (s *Store) Clear() {
	for _, scope := range []Scope{ScopeDurable, ScopeSession} {
		if err := s.backend.Delete(scope); err != nil {
			s.logger.Warn("Не удалось удалить токен",
				slog.String("scope", scope.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
