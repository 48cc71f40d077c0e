package session

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/tokenstore"
)

// Snapshot — неизменяемое состояние сессии на момент публикации.
type Snapshot struct {
	identity *model.Identity
}

// LoggedIn — производный признак: сессия активна, если есть Identity.
func (s Snapshot) LoggedIn() bool {
	return s.identity != nil
}

// Identity возвращает копию Identity; false для анонимной сессии.
// Extra копируется: правка результата не меняет опубликованный Snapshot.
func (s Snapshot) Identity() (model.Identity, bool) {
	if s.identity == nil {
		return model.Identity{}, false
	}
	id := *s.identity
	id.Extra = maps.Clone(id.Extra)
	return id, true
}

// Role возвращает роль или пустую строку для анонимной сессии.
func (s Snapshot) Role() string {
	if s.identity == nil {
		return ""
	}
	return s.identity.Role
}

// SnapshotOf строит Snapshot из Identity (для тестов и шаблонов).
func SnapshotOf(id model.Identity) Snapshot {
	return Snapshot{identity: &id}
}

// Context — единственный владелец состояния сессии.
// Изменяется только через Login и Logout; подписчики получают новый
// Snapshot синхронно, в порядке подписки, после смены состояния.
type Context struct {
	mu     sync.Mutex
	store  *tokenstore.Store
	logger *slog.Logger

	token string
	snap  Snapshot

	subs   []subscriber
	nextID uint64
}

type subscriber struct {
	id uint64
	fn func(Snapshot)
}

// New создаёт Context и однократно восстанавливает сессию из хранилища.
func New(store *tokenstore.Store, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Context{
		store:  store,
		logger: logger.With(slog.String("component", "session")),
	}
	if token, ok := store.Get(); ok {
		c.token = token
		c.snap = c.decode(token)
	}
	return c
}

// Login сохраняет токен, пересчитывает Identity и публикует Snapshot.
// Токен, который не декодируется, оставляет сессию анонимной.
func (c *Context) Login(token string, remember bool) Snapshot {
	c.mu.Lock()
	c.store.Set(token, remember)
	c.token = token
	c.snap = c.decode(token)
	snap, subs := c.snap, c.subscribers()
	c.mu.Unlock()

	publish(subs, snap)
	return snap
}

// Logout очищает хранилище и Identity, публикует анонимный Snapshot.
func (c *Context) Logout() Snapshot {
	c.mu.Lock()
	c.store.Clear()
	c.token = ""
	c.snap = Snapshot{}
	snap, subs := c.snap, c.subscribers()
	c.mu.Unlock()

	publish(subs, snap)
	return snap
}

// Current возвращает текущий Snapshot.
func (c *Context) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Token возвращает сохранённый токен (пустая строка — токена нет).
func (c *Context) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Subscribe регистрирует обработчик изменений сессии.
// Возвращает функцию отписки; повторный вызов безопасен.
func (c *Context) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Context) decode(token string) Snapshot {
	id, ok := Decode(token)
	if !ok {
		c.logger.Debug("Токен не декодируется, сессия анонимная")
		return Snapshot{}
	}
	return Snapshot{identity: &id}
}

// subscribers возвращает копию списка подписчиков. Вызывается под mu.
func (c *Context) subscribers() []subscriber {
	out := make([]subscriber, len(c.subs))
	copy(out, c.subs)
	return out
}

func publish(subs []subscriber, snap Snapshot) {
	for _, s := range subs {
		s.fn(snap)
	}
}

type ctxKey struct{}

// WithContext кладёт Context сессии в context.Context запроса.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext извлекает Context сессии из context.Context запроса.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok
}
