// Пакет errors — JSON-ответы с ошибками на фоновые запросы скрипта страницы.
// Формат: {"error": {"code": "...", "message": "...", "field": "...", "upstreamStatus": N}}.
// message уже переведён на язык запроса.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeViewExpired = "VIEW_EXPIRED"
	CodeForbidden   = "FORBIDDEN"
	CodeUpstream    = "UPSTREAM_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field — поле формы, не прошедшее проверку.
	Field string `json:"field,omitempty"`
	// UpstreamStatus — статус ответа upload-API (0, если ответа не было).
	UpstreamStatus int `json:"upstreamStatus,omitempty"`
}

func write(w http.ResponseWriter, status int, detail errorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: detail})
}

// Validation — 400, действие отклонено до обращения к upload-API.
func Validation(w http.ResponseWriter, field, message string) {
	write(w, http.StatusBadRequest, errorDetail{Code: CodeValidation, Message: message, Field: field})
}

// ViewExpired — 404, представление вытеснено или принадлежит другому
// пользователю. Скрипт перезагружает страницу.
func ViewExpired(w http.ResponseWriter, message string) {
	write(w, http.StatusNotFound, errorDetail{Code: CodeViewExpired, Message: message})
}

// Forbidden — 403, маршрут недоступен роли сессии.
func Forbidden(w http.ResponseWriter, message string) {
	write(w, http.StatusForbidden, errorDetail{Code: CodeForbidden, Message: message})
}

// Upstream — 502, upload-API вернул ошибку или недоступен.
func Upstream(w http.ResponseWriter, upstreamStatus int, message string) {
	write(w, http.StatusBadGateway, errorDetail{Code: CodeUpstream, Message: message, UpstreamStatus: upstreamStatus})
}
