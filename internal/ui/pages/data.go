package pages

import (
	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
)

// NavUser — пользователь в навигации.
type NavUser struct {
	DisplayName string
	Avatar      string
	IsAdmin     bool
}

// Nav — общие данные шапки страницы.
type Nav struct {
	// User — nil для гостя.
	User *NavUser
	// Title — ключ i18n заголовка страницы.
	Title string
	// Active — активный пункт меню ("dashboard", "admin").
	Active    string
	Lang      string
	Languages []i18n.Language
	// Path — текущий путь (возврат после смены языка).
	Path string
}

// LoginData — данные страницы входа.
type LoginData struct {
	Nav      Nav
	Email    string
	Remember bool
	// Error — ключ i18n или сообщение upload-API.
	Error string
	// Notice — сообщение после регистрации.
	Notice string
}

// RegisterData — данные страницы регистрации.
type RegisterData struct {
	Nav      Nav
	Email    string
	FullName string
	Error    string
}

// FilesData — список файлов пользователя (фрагмент).
type FilesData struct {
	Files []model.FileRecord
	Error string
}

// DashboardData — данные страницы Dashboard.
type DashboardData struct {
	Nav   Nav
	Files FilesData
	// UploadMessage — сообщение об успешной загрузке.
	UploadMessage string
	UploadError   string
	// RefreshMs — период автообновления списка в миллисекундах.
	RefreshMs int64
	// MaxUploadSize — ограничение размера для подсказки в форме.
	MaxUploadSize int64
}

// ContentData — содержимое файла.
type ContentData struct {
	Nav     Nav
	FileID  int64
	Columns []string
	Rows    []model.Row
	Error   string
	// Back — адрес возврата.
	Back string
}

// DeleteConfirmData — подтверждение удаления.
type DeleteConfirmData struct {
	Nav    Nav
	FileID int64
	Action string
	Back   string
	Error  string
}

// StatusOption — вариант фильтра статуса.
type StatusOption struct {
	Value string
	Label string
}

// StatusOptions — варианты фильтра статуса административного списка.
var StatusOptions = []StatusOption{
	{Value: "", Label: "admin.status_all"},
	{Value: "SUCCESS", Label: "status.success"},
	{Value: "PENDING", Label: "status.pending"},
	{Value: "FAIL", Label: "status.fail"},
	{Value: "DELETED", Label: "status.deleted"},
}

// AdminRow — строка административного списка.
type AdminRow struct {
	Number  int
	File    model.FileRecord
	Deleted bool
}

// AdminListData — фрагмент административного списка.
type AdminListData struct {
	ViewID     string
	Version    uint64
	Rows       []AdminRow
	Page       int
	TotalPages int
	Total      int
	CanPrev    bool
	CanNext    bool
	Loading    bool
	Error      string
	Selected   *ContentData
}

// UsersData — фрагмент таблицы пользователей.
type UsersData struct {
	ViewID string
	Term   string
	Users  []model.UserRecord
	Error  string
}

// AdminData — данные страницы администратора.
type AdminData struct {
	Nav       Nav
	ViewID    string
	Search    string
	Status    string
	Date      string
	PageSize  int
	PageSizes []int
	Statuses  []StatusOption
	List      AdminListData
	Users     UsersData
	// ActionError — ошибка последнего действия (без скрипта).
	ActionError string
}

// ForbiddenData — данные страницы 403.
type ForbiddenData struct {
	Nav Nav
}
