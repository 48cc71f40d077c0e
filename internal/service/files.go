// files.go — файлы пользователя и администратора: список, загрузка,
// содержимое, удаление с подтверждением.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
)

// FilesAPI — операции upload-API над файлами.
type FilesAPI interface {
	ListFiles(ctx context.Context, token string) ([]model.FileRecord, error)
	ListFilesPage(ctx context.Context, token string, q listquery.Query) (listquery.Page, error)
	UploadFile(ctx context.Context, token, filename string, content io.Reader) (*model.UploadResult, error)
	FileContent(ctx context.Context, token string, id int64) ([]model.Row, error)
	DeleteFile(ctx context.Context, token string, id int64) error
}

// Upload — загружаемый файл из формы.
// Size — заявленный размер (-1, если неизвестен).
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FileService — операции над файлами от имени владельца токена.
type FileService struct {
	api           FilesAPI
	maxUploadSize int64
	logger        *slog.Logger
}

// NewFileService создаёт FileService. maxUploadSize <= 0 отключает проверку размера.
func NewFileService(api FilesAPI, maxUploadSize int64, logger *slog.Logger) *FileService {
	return &FileService{
		api:           api,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "file_service")),
	}
}

// Visible возвращает файлы пользователя без логически удалённых.
func (s *FileService) Visible(ctx context.Context, token string) ([]model.FileRecord, error) {
	files, err := s.api.ListFiles(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("список файлов: %w", err)
	}
	return model.VisibleFiles(files), nil
}

// Page возвращает страницу административного списка.
func (s *FileService) Page(ctx context.Context, token string, q listquery.Query) (listquery.Page, error) {
	page, err := s.api.ListFilesPage(ctx, token, q)
	if err != nil {
		return listquery.Page{}, fmt.Errorf("страница файлов %d: %w", q.Page, err)
	}
	return page, nil
}

// Fetcher возвращает listquery.Fetcher, запрашивающий страницы с токеном,
// который выдаёт tokenFn в момент запроса.
func (s *FileService) Fetcher(tokenFn func() string) listquery.Fetcher {
	return listquery.FetcherFunc(func(ctx context.Context, q listquery.Query) (listquery.Page, error) {
		return s.Page(ctx, tokenFn(), q)
	})
}

// Upload отправляет файл. Пустой выбор и превышение размера
// отклоняются без обращения к API.
func (s *FileService) Upload(ctx context.Context, token string, up Upload) (*model.UploadResult, error) {
	name := strings.TrimSpace(up.Filename)
	if name == "" || up.Content == nil {
		return nil, NewValidationError("file", KeyNoFileSelected)
	}
	if s.maxUploadSize > 0 && up.Size > s.maxUploadSize {
		return nil, NewValidationError("file", KeyFileTooLarge)
	}

	result, err := s.api.UploadFile(ctx, token, name, up.Content)
	if err != nil {
		return nil, fmt.Errorf("загрузка %s: %w", name, err)
	}

	s.logger.Info("Файл загружен",
		slog.String("filename", name),
		slog.Int64("file_id", result.ID),
	)
	return result, nil
}

// Content возвращает строки содержимого файла.
func (s *FileService) Content(ctx context.Context, token string, id int64) ([]model.Row, error) {
	if id <= 0 {
		return nil, NewValidationError("id", KeyInvalidFileID)
	}
	rows, err := s.api.FileContent(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("содержимое файла %d: %w", id, err)
	}
	return rows, nil
}

// Delete удаляет файл. Без подтверждения запрос не отправляется.
func (s *FileService) Delete(ctx context.Context, token string, id int64, confirmed bool) error {
	if id <= 0 {
		return NewValidationError("id", KeyInvalidFileID)
	}
	if !confirmed {
		return NewValidationError("confirm", KeyDeleteUnconfirmed)
	}
	if err := s.api.DeleteFile(ctx, token, id); err != nil {
		return fmt.Errorf("удаление файла %d: %w", id, err)
	}

	s.logger.Info("Файл удалён", slog.Int64("file_id", id))
	return nil
}
