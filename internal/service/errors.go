// Пакет service — бизнес-логика Upload Console поверх upload-API.
// errors.go — ошибки сервисного слоя и сообщения для пользователя.
package service

import (
	"errors"

	"github.com/bigkaa/goartstore/upload-console/internal/gateway"
)

// ErrValidation — ошибка валидации входных данных (до обращения к API).
var ErrValidation = errors.New("ошибка валидации")

// Ключи i18n сообщений для пользователя.
const (
	KeyLoginFailed       = "error.login_failed"
	KeyRegisterFailed    = "error.register_failed"
	KeyUploadFailed      = "error.upload_failed"
	KeyLoadFilesFailed   = "error.load_files_failed"
	KeyLoadUsersFailed   = "error.load_users_failed"
	KeyLoadContentFailed = "error.load_content_failed"
	KeyDeleteFailed      = "error.delete_failed"
	KeyNoToken           = "error.no_token"
	KeyInvalidFormat     = "error.invalid_format"
	KeyEmailRequired     = "error.email_required"
	KeyEmailInvalid      = "error.email_invalid"
	KeyPasswordRequired  = "error.password_required"
	KeyFullNameRequired  = "error.full_name_required"
	KeyPasswordMismatch  = "error.password_mismatch"
	KeyNoFileSelected    = "error.no_file_selected"
	KeyFileTooLarge      = "error.file_too_large"
	KeyDeleteUnconfirmed = "error.delete_unconfirmed"
	KeyInvalidDate       = "error.invalid_date"
	KeyInvalidPageSize   = "error.invalid_page_size"
	KeyInvalidFileID     = "error.invalid_file_id"
)

// ValidationError — ошибка валидации поля формы.
// Key — ключ i18n сообщения для пользователя.
type ValidationError struct {
	Field string
	Key   string
}

// Error реализует error.
func (e *ValidationError) Error() string {
	return "ошибка валидации поля " + e.Field + ": " + e.Key
}

// Unwrap позволяет проверять errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError создаёт ValidationError.
func NewValidationError(field, key string) *ValidationError {
	return &ValidationError{Field: field, Key: key}
}

// UserMessage возвращает сообщение для пользователя: ключ i18n для
// ошибок валидации и известных ошибок формата, поле message ответа API,
// если оно пришло, иначе fallbackKey.
func UserMessage(err error, fallbackKey string) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Key
	}
	switch {
	case errors.Is(err, gateway.ErrNoToken):
		return KeyNoToken
	case errors.Is(err, gateway.ErrInvalidFormat):
		return KeyInvalidFormat
	}
	return gateway.MessageOf(err, fallbackKey)
}
