// admin.go — страница администратора: файлы всех пользователей
// с фильтрами, поиском и пагинацией, таблица пользователей.
//
// Состояние списка живёт в представлении (views.View) на сервере.
// Скрипт страницы пересылает действия POST-запросами и получает
// обновлённый фрагмент long-poll запросом.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/upload-console/internal/api/errors"
	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
	"github.com/bigkaa/goartstore/upload-console/internal/service"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goartstore/upload-console/internal/ui/middleware"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/pages"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/views"
)

// HeaderViewVersion — версия представления в ответе фрагмента.
const HeaderViewVersion = "X-View-Version"

// AdminHandler — обработчики страницы администратора.
type AdminHandler struct {
	files    *service.FileService
	users    *service.UserService
	registry *views.Registry
	longPoll time.Duration
	logger   *slog.Logger
}

// NewAdminHandler создаёт AdminHandler.
// longPoll — максимальная длительность ожидания изменений фрагмента.
func NewAdminHandler(
	files *service.FileService,
	users *service.UserService,
	registry *views.Registry,
	longPoll time.Duration,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		files:    files,
		users:    users,
		registry: registry,
		longPoll: longPoll,
		logger:   logger.With(slog.String("component", "ui.admin")),
	}
}

// HandleAdmin — GET /admin. Каждая загрузка страницы создаёт новое представление.
func (h *AdminHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromRequest(r)
	id, _ := sess.Current().Identity()

	v := h.registry.Create(id.ID, sess.Token())
	h.loadUsers(r.Context(), v, "")

	st := v.State()
	renderPage(w, r, h.logger, http.StatusOK, pages.Admin(pages.AdminData{
		Nav:       buildNav(r, "admin.title", "admin"),
		ViewID:    st.ID,
		Search:    st.List.RawSearch,
		Status:    st.List.Query.Filters[listquery.StatusField],
		Date:      st.List.Query.Date(),
		PageSize:  st.List.Query.PageSize,
		PageSizes: listquery.PageSizes,
		Statuses:  pages.StatusOptions,
		List:      listData(st),
		Users:     usersData(st),
	}))
}

// HandleFragment — GET /admin/views/{view}/fragment?since=N.
// Ждёт изменения представления после версии since. Без изменений
// за время long-poll отвечает 204.
func (h *AdminHandler) HandleFragment(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}

	since, err := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64)
	if err != nil {
		since = 0
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.longPoll)
	defer cancel()

	if v.Wait(ctx, since) == since {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	st := v.State()
	w.Header().Set(HeaderViewVersion, strconv.FormatUint(st.Version, 10))
	renderPage(w, r, h.logger, http.StatusOK, pages.AdminList(listData(st)))
}

// HandleSearch — POST .../search (q). Фиксируется после окна тишины.
func (h *AdminHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		v.Machine().SetSearch(r.FormValue("q"))
		return nil
	})
}

// HandleFilter — POST .../filter (field, value). Допустим только фильтр статуса.
func (h *AdminHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		field := r.FormValue("field")
		if field == "" {
			field = listquery.StatusField
		}
		if field != listquery.StatusField {
			return service.NewValidationError("field", "error.invalid_filter")
		}
		v.Machine().SetFilter(field, r.FormValue("value"))
		return nil
	})
}

// HandleDate — POST .../date (date=YYYY-MM-DD, пусто — сброс).
func (h *AdminHandler) HandleDate(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		if err := v.Machine().SetDate(r.FormValue("date")); err != nil {
			return service.NewValidationError("date", service.KeyInvalidDate)
		}
		return nil
	})
}

// HandleClear — POST .../clear.
func (h *AdminHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		v.Machine().ClearFilters()
		return nil
	})
}

// HandlePageSize — POST .../page-size (size).
func (h *AdminHandler) HandlePageSize(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		size, err := strconv.Atoi(r.FormValue("size"))
		if err != nil {
			return service.NewValidationError("size", service.KeyInvalidPageSize)
		}
		if err := v.Machine().SetPageSize(size); err != nil {
			return service.NewValidationError("size", service.KeyInvalidPageSize)
		}
		return nil
	})
}

// HandlePage — POST .../page (to=first|prev|next|last|N).
func (h *AdminHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		m := v.Machine()
		switch to := r.FormValue("to"); to {
		case "first":
			m.First()
		case "prev":
			m.Prev()
		case "next":
			m.Next()
		case "last":
			m.Last()
		default:
			page, err := strconv.Atoi(to)
			if err != nil {
				return service.NewValidationError("to", "error.invalid_page")
			}
			m.GoTo(page)
		}
		return nil
	})
}

// HandleRefresh — POST .../refresh. Сбрасывает и кеш списка пользователей.
func (h *AdminHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		h.users.Invalidate(v.Token())
		v.Machine().Refresh()
		return nil
	})
}

// HandleClose — POST .../close. Страница закрывается, представление больше не нужно.
func (h *AdminHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	h.registry.Remove(v.ID())
	w.WriteHeader(http.StatusNoContent)
}

// HandleSelect — POST .../files/{id}/select. Загружает содержимое файла.
func (h *AdminHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		id, ok := fileID(r)
		if !ok {
			return service.NewValidationError("id", service.KeyInvalidFileID)
		}
		sel := &views.Selection{FileID: id}
		rows, err := h.files.Content(r.Context(), v.Token(), id)
		if err != nil {
			sel.Err = service.UserMessage(err, service.KeyLoadContentFailed)
		} else {
			sel.Columns = model.Columns(rows)
			sel.Rows = rows
		}
		v.Select(sel)
		return nil
	})
}

// HandleDeselect — POST .../deselect.
func (h *AdminHandler) HandleDeselect(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		v.Select(nil)
		return nil
	})
}

// HandleDelete — POST .../files/{id}/delete (confirm=yes).
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(v *views.View) error {
		id, _ := fileID(r)
		if err := h.files.Delete(r.Context(), v.Token(), id, r.FormValue("confirm") == "yes"); err != nil {
			return err
		}
		// После удаления панель содержимого закрывается, какой бы файл ни был выбран.
		v.Select(nil)
		v.Machine().Refresh()
		return nil
	})
}

// HandleUsers — GET .../users?q=term (фрагмент таблицы пользователей).
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	h.loadUsers(r.Context(), v, r.URL.Query().Get("q"))
	renderPage(w, r, h.logger, http.StatusOK, pages.Users(usersData(v.State())))
}

// act выполняет действие над представлением и отвечает 204.
// Новое состояние скрипт получает через фрагмент.
func (h *AdminHandler) act(w http.ResponseWriter, r *http.Request, fn func(v *views.View) error) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if err := fn(v); err != nil {
		h.logger.Debug("Действие администратора отклонено",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeScriptError(w, r, err, service.KeyDeleteFailed)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// view находит представление запроса. Чужое представление не раскрывается.
func (h *AdminHandler) view(w http.ResponseWriter, r *http.Request) (*views.View, bool) {
	sess := uimiddleware.SessionFromRequest(r)
	id, _ := sess.Current().Identity()

	v, ok := h.registry.Get(chi.URLParam(r, "view"))
	if !ok || v.OwnerID() != id.ID {
		apierrors.ViewExpired(w, i18n.T(r.Context(), "error.view_expired"))
		return nil, false
	}
	v.SetToken(sess.Token())
	return v, true
}

func (h *AdminHandler) loadUsers(ctx context.Context, v *views.View, term string) {
	users, err := h.users.Search(ctx, v.Token(), term)
	if err != nil {
		v.SetUsers(term, nil, service.UserMessage(err, service.KeyLoadUsersFailed))
		return
	}
	v.SetUsers(term, users, "")
}

// listData переводит состояние представления в данные фрагмента.
func listData(st views.State) pages.AdminListData {
	list := st.List
	data := pages.AdminListData{
		ViewID:     st.ID,
		Version:    st.Version,
		Rows:       make([]pages.AdminRow, 0, len(list.Files)),
		Page:       list.Query.Page,
		TotalPages: max(1, list.TotalPages),
		Total:      list.Total,
		CanPrev:    list.CanPrev(),
		CanNext:    list.CanNext(),
		Loading:    list.Loading || list.SearchPending,
		Error:      list.Err,
	}
	for i, f := range list.Files {
		data.Rows = append(data.Rows, pages.AdminRow{
			Number:  list.RowNumber(i),
			File:    f,
			Deleted: f.IsDeleted(),
		})
	}
	if sel := st.Selected; sel != nil {
		data.Selected = &pages.ContentData{
			FileID:  sel.FileID,
			Columns: sel.Columns,
			Rows:    sel.Rows,
			Error:   sel.Err,
		}
	}
	return data
}

func usersData(st views.State) pages.UsersData {
	return pages.UsersData{
		ViewID: st.ID,
		Term:   st.UserTerm,
		Users:  st.Users,
		Error:  st.UsersErr,
	}
}
