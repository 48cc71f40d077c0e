package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoToken — ответ на вход не содержит токена ни под одним из известных ключей.
var ErrNoToken = errors.New("No access token received")

// ErrInvalidFormat — ответ API не соответствует ожидаемой форме.
var ErrInvalidFormat = errors.New("Data format invalid")

// APIError — ответ upload-API со статусом вне 2xx.
type APIError struct {
	// StatusCode — HTTP-статус ответа.
	StatusCode int
	// Message — поле message тела ответа, если оно есть.
	Message string
	// Body — начало тела ответа (для логов).
	Body string
}

// Error реализует error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upload-API вернул статус %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upload-API вернул статус %d: %s", e.StatusCode, e.Body)
}

// MessageOf возвращает сообщение для пользователя: поле message ответа
// API, если оно пришло, иначе fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNoToken) || errors.Is(err, ErrInvalidFormat) {
		return err.Error()
	}
	return fallback
}

// StatusOf возвращает HTTP-статус APIError или 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// maxErrorBody — сколько байт тела ошибки сохраняется в APIError.Body.
const maxErrorBody = 512

// newAPIError извлекает message из тела ответа.
// message может быть строкой или массивом строк (ошибки валидации).
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	if len(body) > maxErrorBody {
		e.Body = string(body[:maxErrorBody])
	} else {
		e.Body = string(body)
	}

	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return e
	}

	var s string
	if err := json.Unmarshal(payload.Message, &s); err == nil {
		e.Message = s
		return e
	}
	var list []string
	if err := json.Unmarshal(payload.Message, &list); err == nil {
		e.Message = strings.Join(list, "; ")
	}
	return e
}
