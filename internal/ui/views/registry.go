package views

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
)

var activeViews = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "uc_admin_views_active",
	Help: "Количество открытых административных представлений.",
})

// FetcherFactory строит загрузчик страниц, берущий токен из tokenFn.
type FetcherFactory func(tokenFn func() string) listquery.Fetcher

// Options — параметры Registry.
type Options struct {
	// Size — максимум одновременно открытых представлений.
	Size int
	// TTL — время жизни неактивного представления.
	TTL time.Duration
	// Machine — параметры автомата списка. OnChange задаётся реестром.
	Machine listquery.Options
}

// Registry — реестр представлений с вытеснением по LRU и TTL.
// Вытесненное представление закрывается.
type Registry struct {
	cache   *expirable.LRU[string, *View]
	fetcher FetcherFactory
	machine listquery.Options
	logger  *slog.Logger
}

// NewRegistry создаёт Registry.
func NewRegistry(fetcher FetcherFactory, opts Options, logger *slog.Logger) *Registry {
	if opts.Size <= 0 {
		opts.Size = 1000
	}
	r := &Registry{
		fetcher: fetcher,
		machine: opts.Machine,
		logger:  logger.With(slog.String("component", "views")),
	}
	r.cache = expirable.NewLRU[string, *View](opts.Size, r.onEvict, opts.TTL)
	return r
}

// Create создаёт представление владельца ownerID и запускает первую загрузку.
func (r *Registry) Create(ownerID int64, token string) *View {
	v := &View{
		id:      uuid.NewString(),
		ownerID: ownerID,
		token:   token,
		changed: make(chan struct{}),
	}

	mopts := r.machine
	mopts.OnChange = v.bump
	if mopts.Logger == nil {
		mopts.Logger = r.logger
	}
	v.machine = listquery.NewMachine(r.fetcher(v.Token), mopts)

	r.cache.Add(v.id, v)
	activeViews.Inc()
	r.logger.Debug("Представление создано",
		slog.String("view_id", v.id),
		slog.Int64("owner_id", ownerID),
		slog.Int("active", r.Len()),
	)

	v.machine.Refresh()
	return v
}

// Get возвращает представление и продлевает его время жизни.
func (r *Registry) Get(id string) (*View, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	r.cache.Add(id, v)
	return v, true
}

// Remove закрывает и удаляет представление.
func (r *Registry) Remove(id string) {
	r.cache.Remove(id)
}

// Len возвращает количество открытых представлений.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge закрывает все представления.
func (r *Registry) Purge() {
	n := r.Len()
	r.cache.Purge()
	r.logger.Info("Представления закрыты", slog.Int("count", n))
}

func (r *Registry) onEvict(id string, v *View) {
	v.Close()
	activeViews.Dec()
	r.logger.Debug("Представление закрыто", slog.String("view_id", id))
}
