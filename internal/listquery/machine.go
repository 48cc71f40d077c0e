package listquery

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
)

// Page — одна страница ответа upload-API.
type Page struct {
	Files []model.FileRecord
	Total int
}

// Fetcher загружает страницу списка по запросу.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (Page, error)
}

// FetcherFunc — адаптер функции к Fetcher.
type FetcherFunc func(ctx context.Context, q Query) (Page, error)

// Fetch вызывает f.
func (f FetcherFunc) Fetch(ctx context.Context, q Query) (Page, error) {
	return f(ctx, q)
}

// FetchFailedMessage — сообщение пользователю при ошибке загрузки.
const FetchFailedMessage = "Failed to load files"

// Options — параметры Machine.
type Options struct {
	// PageSize — начальный размер страницы (DefaultPageSize, если недопустим).
	PageSize int
	// Debounce — окно тишины поиска.
	Debounce time.Duration
	// FetchTimeout — таймаут одной загрузки (0 — без таймаута).
	FetchTimeout time.Duration
	// OnChange вызывается после каждого изменения Snapshot, вне блокировки.
	OnChange func()
	// AfterFunc — планировщик задержки поиска (time.AfterFunc по умолчанию).
	AfterFunc AfterFunc
	// Spawn запускает загрузку (go по умолчанию).
	Spawn func(func())
	// StaleCounter — счётчик отброшенных ответов.
	StaleCounter prometheus.Counter
	Logger       *slog.Logger
}

// Snapshot — состояние списка на момент чтения.
type Snapshot struct {
	Query      Query
	RawSearch  string
	Files      []model.FileRecord
	Total      int
	TotalPages int
	Loading    bool
	// SearchPending — правка поиска ждёт окончания окна тишины.
	SearchPending bool
	// Err — сообщение о последней ошибке загрузки, пусто при успехе.
	Err string
	// Seq — номер последнего выданного запроса.
	Seq uint64
}

// CanPrev — доступны кнопки «первая» и «предыдущая».
func (s Snapshot) CanPrev() bool {
	return s.Query.Page > 1
}

// CanNext — доступны кнопки «следующая» и «последняя».
func (s Snapshot) CanNext() bool {
	return s.Query.Page < s.TotalPages
}

// RowNumber возвращает сквозной номер i-й строки страницы (с единицы).
func (s Snapshot) RowNumber(i int) int {
	return (s.Query.Page-1)*s.Query.PageSize + i + 1
}

// Machine — конечный автомат запроса списка.
// Каждое изменение запроса выдаёт загрузку с возрастающим номером;
// применяется только ответ на последний выданный номер.
type Machine struct {
	fetcher      Fetcher
	debouncer    *Debouncer
	fetchTimeout time.Duration
	onChange     func()
	spawn        func(func())
	stale        prometheus.Counter
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	query     Query
	rawSearch string
	files     []model.FileRecord
	total     int
	loading   bool
	lastErr   string
	seq       uint64
	closed    bool
}

// NewMachine создаёт Machine. Первая загрузка выполняется через Refresh.
func NewMachine(fetcher Fetcher, opts Options) *Machine {
	if opts.Spawn == nil {
		opts.Spawn = func(f func()) { go f() }
	}
	if opts.StaleCounter == nil {
		opts.StaleCounter = staleResponses
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OnChange == nil {
		opts.OnChange = func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		fetcher:      fetcher,
		debouncer:    NewDebouncer(opts.Debounce, opts.AfterFunc),
		fetchTimeout: opts.FetchTimeout,
		onChange:     opts.OnChange,
		spawn:        opts.Spawn,
		stale:        opts.StaleCounter,
		logger:       opts.Logger.With(slog.String("component", "listquery")),
		ctx:          ctx,
		cancel:       cancel,
		query:        NewQuery(opts.PageSize),
	}
}

// Snapshot возвращает текущее состояние.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Query:         m.query.Clone(),
		RawSearch:     m.rawSearch,
		Files:         m.files,
		Total:         m.total,
		TotalPages:    TotalPages(m.total, m.query.PageSize),
		Loading:       m.loading,
		SearchPending: m.debouncer.Pending(),
		Err:           m.lastErr,
		Seq:           m.seq,
	}
}

// SetSearch обновляет сырой ввод поиска. Фиксация в SearchFilters
// происходит после окна тишины; каждая новая правка перезапускает окно.
func (m *Machine) SetSearch(raw string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.rawSearch = raw
	m.debouncer.Schedule(m.commitSearch)
	m.mu.Unlock()

	m.onChange()
}

func (m *Machine) commitSearch() {
	m.mutate(func(q *Query) {
		setKey(q.SearchFilters, SearchField, m.rawSearch)
		q.Page = 1
	})
}

// SetFilter заменяет точный фильтр поля; пустое значение удаляет его.
func (m *Machine) SetFilter(field, value string) {
	if field == "" {
		return
	}
	m.mutate(func(q *Query) {
		setKey(q.Filters, field, value)
		q.Page = 1
	})
}

// SetDate заменяет фильтр диапазонов полным днём date; пустая строка
// очищает его. Недопустимая дата оставляет состояние без изменений.
func (m *Machine) SetDate(date string) error {
	date = strings.TrimSpace(date)
	var ranged []RangeFilter
	if date != "" {
		r, err := DayRange(date)
		if err != nil {
			return err
		}
		ranged = []RangeFilter{r}
	}

	m.mutate(func(q *Query) {
		q.RangedFilters = ranged
		q.Page = 1
	})
	return nil
}

// ClearFilters сбрасывает все фильтры, поиск и сырой ввод, страница → 1.
// Ожидающая фиксация поиска отменяется.
func (m *Machine) ClearFilters() {
	m.debouncer.Cancel()
	m.mutate(func(q *Query) {
		m.rawSearch = ""
		q.Filters = map[string]string{}
		q.SearchFilters = map[string]string{}
		q.RangedFilters = nil
		q.Page = 1
	})
}

// SetPageSize меняет размер страницы, страница → 1.
func (m *Machine) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return ErrInvalidPageSize
	}
	m.mutate(func(q *Query) {
		q.PageSize = n
		q.Page = 1
	})
	return nil
}

// GoTo переходит на страницу page, приведённую к [1, TotalPages].
func (m *Machine) GoTo(page int) {
	m.mutate(func(q *Query) {
		q.Page = clampPage(page, m.total, q.PageSize)
	})
}

// First переходит на первую страницу.
func (m *Machine) First() { m.GoTo(1) }

// Prev переходит на предыдущую страницу.
func (m *Machine) Prev() {
	m.mutate(func(q *Query) {
		q.Page = clampPage(q.Page-1, m.total, q.PageSize)
	})
}

// Next переходит на следующую страницу.
func (m *Machine) Next() {
	m.mutate(func(q *Query) {
		q.Page = clampPage(q.Page+1, m.total, q.PageSize)
	})
}

// Last переходит на последнюю страницу.
func (m *Machine) Last() {
	m.mutate(func(q *Query) {
		q.Page = TotalPages(m.total, q.PageSize)
	})
}

// Refresh повторяет загрузку с неизменным запросом.
func (m *Machine) Refresh() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	launch := m.issueLocked()
	m.mu.Unlock()

	m.onChange()
	m.spawn(launch)
}

// Close отменяет ожидающую фиксацию поиска и загрузки в полёте.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.debouncer.Cancel()
	m.cancel()
}

// mutate применяет fn к запросу и выдаёт загрузку, только если запрос изменился.
func (m *Machine) mutate(fn func(q *Query)) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	before := m.query.Clone()
	fn(&m.query)

	var launch func()
	if !m.query.Equal(before) {
		launch = m.issueLocked()
	}
	m.mu.Unlock()

	m.onChange()
	if launch != nil {
		m.spawn(launch)
	}
}

// issueLocked выдаёт номер загрузки. Вызывается под mu.
func (m *Machine) issueLocked() func() {
	m.seq++
	seq := m.seq
	q := m.query.Clone()
	m.loading = true
	return func() { m.fetch(seq, q) }
}

func (m *Machine) fetch(seq uint64, q Query) {
	ctx := m.ctx
	if m.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.fetchTimeout)
		defer cancel()
	}

	page, err := m.fetcher.Fetch(ctx, q)

	m.mu.Lock()
	if seq != m.seq || m.closed {
		m.mu.Unlock()
		m.stale.Inc()
		m.logger.Debug("Устаревший ответ списка отброшен",
			slog.Uint64("seq", seq),
		)
		return
	}

	m.loading = false
	if err != nil {
		m.lastErr = FetchFailedMessage
		m.mu.Unlock()
		m.logger.Warn("Ошибка загрузки списка файлов",
			slog.Uint64("seq", seq),
			slog.String("error", err.Error()),
		)
		m.onChange()
		return
	}
	m.lastErr = ""
	m.files = page.Files
	m.total = max(0, page.Total)
	m.mu.Unlock()

	m.onChange()
}

// setKey записывает значение; пустое значение удаляет ключ.
func setKey(m map[string]string, key, value string) {
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}
