// Package timer 可暂停、可重置的正向计时器，每跳回调一次
package timer

import (
	"sync"
	"time"
)

// Ticker Timer 使用的周期性跳动源
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type Options struct {
	InitialTime int
	Interval    time.Duration
	OnTick      func(current int)
	NewTicker   TickerFactory
}

// Timer 计数递增；暂停时停止底层 ticker，不再投递 tick
type Timer struct {
	mu        sync.Mutex
	initial   int
	current   int
	interval  time.Duration
	onTick    func(int)
	newTicker TickerFactory

	running bool
	ticker  Ticker
	done    chan struct{}
	gen     uint64
}

func New(opts Options) *Timer {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewRealTicker
	}
	return &Timer{
		initial:   opts.InitialTime,
		current:   opts.InitialTime,
		interval:  opts.Interval,
		onTick:    opts.OnTick,
		newTicker: opts.NewTicker,
	}
}

// Start 从已累计的时间继续计时，已在运行时不做任何事
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.gen++
	t.ticker = t.newTicker(t.interval)
	t.done = make(chan struct{})
	go t.loop(t.ticker, t.done, t.gen)
}

func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Reset 停止计时并回到初始时间
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.current = t.initial
}

func (t *Timer) SetTime(n int) {
	t.mu.Lock()
	t.current = n
	t.mu.Unlock()
}

func (t *Timer) Time() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// SetInterval 下次 Start 时生效
func (t *Timer) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()
}

func (t *Timer) stopLocked() {
	if !t.running {
		return
	}
	t.running = false
	t.ticker.Stop()
	close(t.done)
	t.ticker = nil
	t.done = nil
}

func (t *Timer) loop(tk Ticker, done <-chan struct{}, gen uint64) {
	for {
		select {
		case <-done:
			return
		case <-tk.C():
			t.mu.Lock()
			// 过期的 goroutine（已暂停后重启）丢弃 tick
			if !t.running || t.gen != gen {
				t.mu.Unlock()
				return
			}
			t.current++
			n := t.current
			cb := t.onTick
			t.mu.Unlock()

			if cb != nil {
				cb(n)
			}
		}
	}
}
