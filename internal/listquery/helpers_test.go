package listquery

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manualTimer — таймер, который срабатывает только по команде теста.
type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualClock выдаёт manualTimer и позволяет «прокрутить» окно задержки.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// Elapse запускает все неостановленные таймеры.
func (c *manualClock) Elapse() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()

	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

// recordingFetcher запоминает запросы и отвечает фиксированной страницей.
type recordingFetcher struct {
	mu      sync.Mutex
	queries []Query
	total   int
	err     error
}

func (f *recordingFetcher) Fetch(_ context.Context, q Query) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return Page{}, f.err
	}
	return Page{Total: f.total}, nil
}

func (f *recordingFetcher) calls() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Query, len(f.queries))
	copy(out, f.queries)
	return out
}

// newSyncMachine создаёт Machine с синхронными загрузками и ручным таймером.
func newSyncMachine(t *testing.T, fetcher Fetcher) (*Machine, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	m := NewMachine(fetcher, Options{
		PageSize:     10,
		Debounce:     400 * time.Millisecond,
		AfterFunc:    clock.AfterFunc,
		Spawn:        func(f func()) { f() },
		StaleCounter: prometheus.NewCounter(prometheus.CounterOpts{Name: "test_stale_total"}),
		Logger:       testLogger(),
	})
	t.Cleanup(m.Close)
	return m, clock
}

// countingCounter — prometheus.Counter с приращениями, доступными тесту.
type countingCounter struct {
	prometheus.Counter
	n atomic.Int64
}

func newCountingCounter(name string) *countingCounter {
	return &countingCounter{Counter: prometheus.NewCounter(prometheus.CounterOpts{Name: name})}
}

func (c *countingCounter) Inc() {
	c.n.Add(1)
	c.Counter.Inc()
}

func (c *countingCounter) Count() int64 {
	return c.n.Load()
}
