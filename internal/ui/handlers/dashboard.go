// dashboard.go — страница файлов пользователя: список, загрузка,
// содержимое и удаление с подтверждением.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	"github.com/bigkaa/goartstore/upload-console/internal/service"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/pages"
)

// dashboardPath — адрес страницы файлов пользователя.
const dashboardPath = "/dashboard"

// DashboardHandler — обработчики Dashboard.
type DashboardHandler struct {
	files         *service.FileService
	refresh       time.Duration
	maxUploadSize int64
	logger        *slog.Logger
}

// NewDashboardHandler создаёт DashboardHandler.
// refresh — период автообновления списка в браузере.
func NewDashboardHandler(files *service.FileService, refresh time.Duration, maxUploadSize int64, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		files:         files,
		refresh:       refresh,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard — GET /dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	data := h.dashboardData(r)
	if r.URL.Query().Get("uploaded") != "" {
		data.UploadMessage = "dashboard.upload_success"
	}
	renderPage(w, r, h.logger, http.StatusOK, pages.Dashboard(data))
}

// HandleFilesFragment — GET /dashboard/files (фрагмент для автообновления).
func (h *DashboardHandler) HandleFilesFragment(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.logger, http.StatusOK, pages.FilesList(h.loadFiles(r)))
}

// HandleUpload — POST /dashboard/upload.
func (h *DashboardHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	token := uimiddleware.SessionFromRequest(r).Token()

	upload, closeFn, err := h.readUpload(w, r)
	if err == nil {
		defer closeFn()
		_, err = h.files.Upload(r.Context(), token, upload)
	}
	if err != nil {
		data := h.dashboardData(r)
		data.UploadError = message(r, err, service.KeyUploadFailed)
		renderPage(w, r, h.logger, errorStatus(err), pages.Dashboard(data))
		return
	}

	guard.Navigate(w, r, dashboardPath+"?uploaded=1", http.StatusOK)
}

// readUpload извлекает файл из multipart-формы.
// Отсутствие файла возвращает пустой Upload: его отклонит сервис.
func (h *DashboardHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, func(), error) {
	noop := func() {}
	if h.maxUploadSize > 0 {
		// Запас на заголовки multipart.
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return service.Upload{}, noop, service.NewValidationError("file", service.KeyFileTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			return service.Upload{}, noop, nil
		}
		return service.Upload{}, noop, fmt.Errorf("чтение формы загрузки: %w", err)
	}

	return service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, func() { _ = file.Close() }, nil
}

// HandleContent — GET /dashboard/files/{id}.
func (h *DashboardHandler) HandleContent(w http.ResponseWriter, r *http.Request) {
	id, _ := fileID(r)
	data := pages.ContentData{
		Nav:    buildNav(r, "content.title", "dashboard"),
		FileID: id,
		Back:   dashboardPath,
	}

	rows, err := h.files.Content(r.Context(), uimiddleware.SessionFromRequest(r).Token(), id)
	if err != nil {
		data.Error = message(r, err, service.KeyLoadContentFailed)
		renderPage(w, r, h.logger, errorStatus(err), pages.Content(data))
		return
	}

	data.Columns = model.Columns(rows)
	data.Rows = rows
	renderPage(w, r, h.logger, http.StatusOK, pages.Content(data))
}

// HandleDeleteConfirm — GET /dashboard/files/{id}/delete.
func (h *DashboardHandler) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := fileID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	renderPage(w, r, h.logger, http.StatusOK, pages.DeleteConfirm(h.confirmData(r, id, "")))
}

// HandleDelete — POST /dashboard/files/{id}/delete. Требует confirm=yes.
func (h *DashboardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := fileID(r)
	token := uimiddleware.SessionFromRequest(r).Token()

	err := h.files.Delete(r.Context(), token, id, r.FormValue("confirm") == "yes")
	if err != nil {
		renderPage(w, r, h.logger, errorStatus(err),
			pages.DeleteConfirm(h.confirmData(r, id, message(r, err, service.KeyDeleteFailed))))
		return
	}

	guard.Navigate(w, r, dashboardPath, http.StatusOK)
}

func (h *DashboardHandler) confirmData(r *http.Request, id int64, errMsg string) pages.DeleteConfirmData {
	return pages.DeleteConfirmData{
		Nav:    buildNav(r, "delete.title", "dashboard"),
		FileID: id,
		Action: fmt.Sprintf("%s/files/%d/delete", dashboardPath, id),
		Back:   dashboardPath,
		Error:  errMsg,
	}
}

func (h *DashboardHandler) dashboardData(r *http.Request) pages.DashboardData {
	return pages.DashboardData{
		Nav:           buildNav(r, "dashboard.title", "dashboard"),
		Files:         h.loadFiles(r),
		RefreshMs:     h.refresh.Milliseconds(),
		MaxUploadSize: h.maxUploadSize,
	}
}

func (h *DashboardHandler) loadFiles(r *http.Request) pages.FilesData {
	files, err := h.files.Visible(r.Context(), uimiddleware.SessionFromRequest(r).Token())
	if err != nil {
		h.logger.Warn("Не удалось загрузить файлы пользователя", slog.String("error", err.Error()))
		return pages.FilesData{Error: message(r, err, service.KeyLoadFilesFailed)}
	}
	return pages.FilesData{Files: files}
}
