// Пакет views — административные представления вкладок браузера.
// Представление держит конечный автомат списка файлов, загруженных
// пользователей и выбранное содержимое файла между запросами одной вкладки.
package views

import (
	"context"
	"sync"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
)

// Selection — выбранный файл и его содержимое.
type Selection struct {
	FileID  int64
	Columns []string
	Rows    []model.Row
	// Err — ключ или текст ошибки загрузки содержимого.
	Err string
}

// State — состояние представления на момент чтения.
type State struct {
	ID       string
	List     listquery.Snapshot
	Users    []model.UserRecord
	UsersErr string
	UserTerm string
	Selected *Selection
	Version  uint64
}

// View — представление одной вкладки.
type View struct {
	id      string
	ownerID int64
	machine *listquery.Machine

	mu       sync.Mutex
	token    string
	users    []model.UserRecord
	usersErr string
	userTerm string
	selected *Selection
	version  uint64
	changed  chan struct{}
}

// ID возвращает идентификатор представления.
func (v *View) ID() string { return v.id }

// OwnerID возвращает ID пользователя, создавшего представление.
func (v *View) OwnerID() int64 { return v.ownerID }

// Machine возвращает автомат списка файлов.
func (v *View) Machine() *listquery.Machine { return v.machine }

// SetToken обновляет токен, которым выполняются загрузки.
func (v *View) SetToken(token string) {
	v.mu.Lock()
	v.token = token
	v.mu.Unlock()
}

// Token возвращает текущий токен.
func (v *View) Token() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token
}

// SetUsers сохраняет результат загрузки пользователей.
func (v *View) SetUsers(term string, users []model.UserRecord, errMsg string) {
	v.mu.Lock()
	v.userTerm = term
	v.users = users
	v.usersErr = errMsg
	v.mu.Unlock()
	v.bump()
}

// Select сохраняет выбранное содержимое. nil снимает выбор.
func (v *View) Select(sel *Selection) {
	v.mu.Lock()
	v.selected = sel
	v.mu.Unlock()
	v.bump()
}

// State возвращает состояние представления.
func (v *View) State() State {
	list := v.machine.Snapshot()

	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		ID:       v.id,
		List:     list,
		Users:    v.users,
		UsersErr: v.usersErr,
		UserTerm: v.userTerm,
		Selected: v.selected,
		Version:  v.version,
	}
}

// Version возвращает номер последнего изменения.
func (v *View) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Wait ждёт изменения после версии since. Возвращает текущую версию
// сразу, если она новее since, иначе после изменения или отмены ctx.
func (v *View) Wait(ctx context.Context, since uint64) uint64 {
	v.mu.Lock()
	if v.version != since {
		cur := v.version
		v.mu.Unlock()
		return cur
	}
	ch := v.changed
	v.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
	}
	return v.Version()
}

// Close останавливает автомат и будит ожидающих.
func (v *View) Close() {
	v.machine.Close()
	v.bump()
}

// bump увеличивает версию и будит ожидающих.
func (v *View) bump() {
	v.mu.Lock()
	v.version++
	close(v.changed)
	v.changed = make(chan struct{})
	v.mu.Unlock()
}
