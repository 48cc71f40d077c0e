// Пакет pages — страницы и фрагменты Upload Console.
// Каждая страница — templ.Component поверх встроенных html/template.
package pages

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// base — шаблоны с функциями-заглушками для перевода.
// Реальные функции перевода подставляются при каждом рендере.
var base = template.Must(
	template.New("pages").Funcs(funcs(context.Background())).ParseFS(templateFS, "templates/*.html"),
)

func funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t": func(key string) string { return i18n.T(ctx, key) },
		"tf": func(key string, args ...any) string {
			return i18n.Tf(ctx, key, args...)
		},
		"lang": func() string { return i18n.LangFromContext(ctx) },
		"cell": func(row model.Row, column string) string {
			return row.Text(column)
		},
		"statusClass": statusClass,
		"date":        formatDate,
		"add":         func(a, b int) int { return a + b },
	}
}

// render возвращает компонент, выполняющий шаблон name с данными data.
func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, err := base.Clone()
		if err != nil {
			return err
		}
		return t.Funcs(funcs(ctx)).ExecuteTemplate(w, name, data)
	})
}

func statusClass(s model.FileStatus) string {
	switch s.Normalized() {
	case model.FileStatusSuccess:
		return "status status-success"
	case model.FileStatusPending:
		return "status status-pending"
	case model.FileStatusFail:
		return "status status-fail"
	case model.FileStatusDeleted:
		return "status status-deleted"
	}
	return "status"
}

// formatDate выводит CreatedAt в виде "2006-01-02 15:04"; нераспознанное значение как есть.
func formatDate(f model.FileRecord) string {
	if t, ok := f.Created(); ok {
		return t.Format("2006-01-02 15:04")
	}
	if f.CreatedAt == "" {
		return "-"
	}
	return f.CreatedAt
}

// Login — страница входа.
func Login(data LoginData) templ.Component { return render("login", data) }

// Register — страница регистрации.
func Register(data RegisterData) templ.Component { return render("register", data) }

// Dashboard — страница файлов пользователя.
func Dashboard(data DashboardData) templ.Component { return render("dashboard", data) }

// FilesList — фрагмент списка файлов пользователя.
func FilesList(data FilesData) templ.Component { return render("files_list", data) }

// Content — страница содержимого файла.
func Content(data ContentData) templ.Component { return render("content", data) }

// DeleteConfirm — страница подтверждения удаления.
func DeleteConfirm(data DeleteConfirmData) templ.Component { return render("delete_confirm", data) }

// Admin — страница администратора.
func Admin(data AdminData) templ.Component { return render("admin", data) }

// AdminList — фрагмент административного списка.
func AdminList(data AdminListData) templ.Component { return render("admin_list", data) }

// Users — фрагмент таблицы пользователей.
func Users(data UsersData) templ.Component { return render("users", data) }

// Forbidden — страница 403.
func Forbidden(data ForbiddenData) templ.Component { return render("forbidden", data) }
