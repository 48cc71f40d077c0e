// Пакет listquery — состояние постраничного списка файлов администратора:
// страница, размер страницы, точные фильтры, поиск с задержкой и
// фильтр по дате, сведённые в один запрос к upload-API.
package listquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

// Поля, которыми управляет консоль.
const (
	// SearchField — поле подстрочного поиска.
	SearchField = "filename"
	// StatusField — поле точного фильтра по статусу.
	StatusField = "status"
	// DateField — поле фильтра по дате создания.
	DateField = "createdAt"
)

// DateLayout — формат даты в поле ввода.
const DateLayout = "2006-01-02"

// DefaultPageSize — размер страницы по умолчанию.
const DefaultPageSize = 10

// PageSizes — допустимые размеры страницы.
var PageSizes = []int{10, 20, 50, 100}

// ErrInvalidPageSize — размер страницы вне PageSizes.
var ErrInvalidPageSize = errors.New("недопустимый размер страницы")

// ErrInvalidDate — дата не в формате YYYY-MM-DD.
var ErrInvalidDate = errors.New("недопустимая дата")

// RangeFilter — включающий диапазон значений одного поля.
type RangeFilter struct {
	Key   string `json:"key"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Query — полный запрос постраничного списка.
type Query struct {
	Page          int
	PageSize      int
	Filters       map[string]string
	SearchFilters map[string]string
	RangedFilters []RangeFilter
}

// NewQuery возвращает пустой запрос первой страницы.
func NewQuery(pageSize int) Query {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return Query{
		Page:          1,
		PageSize:      pageSize,
		Filters:       map[string]string{},
		SearchFilters: map[string]string{},
	}
}

// Clone возвращает независимую копию запроса.
func (q Query) Clone() Query {
	c := q
	c.Filters = maps.Clone(q.Filters)
	c.SearchFilters = maps.Clone(q.SearchFilters)
	c.RangedFilters = slices.Clone(q.RangedFilters)
	if c.Filters == nil {
		c.Filters = map[string]string{}
	}
	if c.SearchFilters == nil {
		c.SearchFilters = map[string]string{}
	}
	return c
}

// Equal сравнивает запросы по значению.
func (q Query) Equal(o Query) bool {
	return q.Page == o.Page &&
		q.PageSize == o.PageSize &&
		maps.Equal(q.Filters, o.Filters) &&
		maps.Equal(q.SearchFilters, o.SearchFilters) &&
		slices.Equal(q.RangedFilters, o.RangedFilters)
}

// Params сериализует запрос в параметры GET /files:
// page, rows и JSON-строки filters, searchFilters, rangedFilters.
func (q Query) Params() (map[string]string, error) {
	filters, err := json.Marshal(nonNilMap(q.Filters))
	if err != nil {
		return nil, fmt.Errorf("сериализация filters: %w", err)
	}
	search, err := json.Marshal(nonNilMap(q.SearchFilters))
	if err != nil {
		return nil, fmt.Errorf("сериализация searchFilters: %w", err)
	}
	ranged := q.RangedFilters
	if ranged == nil {
		ranged = []RangeFilter{}
	}
	rangedJSON, err := json.Marshal(ranged)
	if err != nil {
		return nil, fmt.Errorf("сериализация rangedFilters: %w", err)
	}

	return map[string]string{
		"page":          strconv.Itoa(q.Page),
		"rows":          strconv.Itoa(q.PageSize),
		"filters":       string(filters),
		"searchFilters": string(search),
		"rangedFilters": string(rangedJSON),
	}, nil
}

// Date возвращает выбранную дату (YYYY-MM-DD) или пустую строку.
func (q Query) Date() string {
	for _, r := range q.RangedFilters {
		if r.Key == DateField && len(r.Start) >= len(DateLayout) {
			return r.Start[:len(DateLayout)]
		}
	}
	return ""
}

// DayRange строит диапазон полного дня для даты YYYY-MM-DD.
func DayRange(date string) (RangeFilter, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return RangeFilter{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return RangeFilter{
		Key:   DateField,
		Start: date + "T00:00:00",
		End:   date + "T23:59:59",
	}, nil
}

// TotalPages — число страниц, не меньше одной.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ValidPageSize проверяет размер страницы.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// clampPage приводит страницу к [1, TotalPages].
func clampPage(page, total, pageSize int) int {
	return max(1, min(page, TotalPages(total, pageSize)))
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
