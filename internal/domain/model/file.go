package model

import (
	"strings"
	"time"
)

// FileStatus — статус обработки файла на стороне upload-сервиса.
type FileStatus string

const (
	// FileStatusPending — файл принят, обработка ещё идёт.
	FileStatusPending FileStatus = "pending"
	// FileStatusSuccess — содержимое файла успешно разобрано.
	FileStatusSuccess FileStatus = "success"
	// FileStatusFail — обработка завершилась ошибкой (см. FailReason).
	FileStatusFail FileStatus = "fail"
	// FileStatusDeleted — файл логически удалён.
	FileStatusDeleted FileStatus = "deleted"
)

// Normalized возвращает статус в нижнем регистре.
// API может присылать статусы как "SUCCESS", так и "success".
func (s FileStatus) Normalized() FileStatus {
	return FileStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// UserRef — краткие данные загрузившего пользователя, вложенные в запись файла.
type UserRef struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// FileRecord — запись файла в upload-сервисе.
// Физически записи не удаляются: удалённый файл получает статус deleted.
type FileRecord struct {
	// ID — числовой идентификатор файла
	ID int64 `json:"id"`
	// Filename — имя файла
	Filename string `json:"filename"`
	// FileURL — ссылка на скачивание
	FileURL string `json:"fileUrl"`
	// Status — pending, success, fail, deleted
	Status FileStatus `json:"status"`
	// UploadedBy — ID загрузившего пользователя
	UploadedBy int64 `json:"uploadedBy"`
	// CreatedAt — время создания в формате API (ISO 8601)
	CreatedAt string `json:"createdAt"`
	// UpdatedAt — время последнего обновления в формате API
	UpdatedAt string `json:"updatedAt"`
	// FailReason — причина ошибки обработки (опционально)
	FailReason string `json:"failReason,omitempty"`
	// User — загрузивший пользователь (присутствует в административном списке)
	User *UserRef `json:"user,omitempty"`
}

// IsDeleted сообщает, удалён ли файл логически.
func (f FileRecord) IsDeleted() bool {
	return f.Status.Normalized() == FileStatusDeleted
}

// UploaderName возвращает имя загрузившего: полное имя, иначе email, иначе "-".
func (f FileRecord) UploaderName() string {
	if f.User == nil {
		return "-"
	}
	if f.User.FullName != "" {
		return f.User.FullName
	}
	if f.User.Email != "" {
		return f.User.Email
	}
	return "-"
}

// Created разбирает CreatedAt. Возвращает false, если время отсутствует или в неизвестном формате.
func (f FileRecord) Created() (time.Time, bool) {
	if f.CreatedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, f.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// VisibleFiles возвращает файлы без логически удалённых (список пользователя).
func VisibleFiles(files []FileRecord) []FileRecord {
	result := make([]FileRecord, 0, len(files))
	for _, f := range files {
		if !f.IsDeleted() {
			result = append(result, f)
		}
	}
	return result
}

// FileInfo — сведения о сохранённом файле из ответа на загрузку.
type FileInfo struct {
	OriginalName string `json:"originalname"`
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// UploadResult — ответ upload-сервиса на POST /files/upload.
type UploadResult struct {
	Message  string   `json:"message"`
	ID       int64    `json:"id"`
	FileInfo FileInfo `json:"fileInfo"`
}
