package listquery

import (
	"sync"
	"time"
)

// Timer — остановимый отложенный вызов (интерфейс *time.Timer).
type Timer interface {
	Stop() bool
}

// AfterFunc планирует f через d. В тестах подменяется ручным таймером.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer — отложенная фиксация с токеном на каждую правку.
// Срабатывает только фиксация с последним выданным токеном;
// более ранние отменяются, даже если их таймер уже сработал.
type Debouncer struct {
	window time.Duration
	after  AfterFunc

	mu    sync.Mutex
	token uint64
	timer Timer
}

// NewDebouncer создаёт Debouncer с окном тишины window.
func NewDebouncer(window time.Duration, after AfterFunc) *Debouncer {
	if after == nil {
		after = realAfterFunc
	}
	return &Debouncer{window: window, after: after}
}

// Schedule отменяет ожидающую фиксацию и планирует commit.
// Возвращает токен правки.
func (d *Debouncer) Schedule(commit func()) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.token++
	token := d.token
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.after(d.window, func() { d.fire(token, commit) })
	return token
}

// Cancel отменяет ожидающую фиксацию.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.token++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending сообщает, есть ли ожидающая фиксация.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) fire(token uint64, commit func()) {
	d.mu.Lock()
	if token != d.token {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	commit()
}
