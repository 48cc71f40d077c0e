package guard

import (
	"sync"

	"github.com/bigkaa/goartstore/upload-console/internal/session"
)

// Follower пересчитывает решение для пути при каждом Login/Logout,
// чтобы обработчик мог сразу перевести пользователя на нужную страницу.
type Follower struct {
	table  Table
	path   string
	cancel func()

	mu      sync.Mutex
	last    Decision
	changed bool
}

// Follow подписывает Follower на изменения сессии sess для пути path.
func Follow(sess *session.Context, t Table, path string) *Follower {
	f := &Follower{table: t, path: path}
	f.cancel = sess.Subscribe(f.onChange)
	return f
}

func (f *Follower) onChange(snap session.Snapshot) {
	d := Resolve(f.table, snap, f.path)
	f.mu.Lock()
	f.last = d
	f.changed = true
	f.mu.Unlock()
}

// Decision возвращает последнее решение; false — сессия не менялась.
func (f *Follower) Decision() (Decision, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.changed
}

// Stop отписывает Follower.
func (f *Follower) Stop() {
	f.cancel()
}
