package timer

import (
	"sync"
	"time"
)

// ManualTicker 由 Tick 调用驱动的 Ticker，不依赖墙钟
type ManualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Tick 发送一次跳动，返回消费方是否在超时前收到
func (m *ManualTicker) Tick(timeout time.Duration) bool {
	if m.Stopped() {
		return false
	}
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(timeout):
		return false
	}
}

// ManualFactory 创建 ManualTicker 并按创建顺序记录
type ManualFactory struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

func (f *ManualFactory) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := NewManualTicker()
	f.tickers = append(f.tickers, t)
	return t
}

// Last 返回最近创建的 ticker，没有时为 nil
func (f *ManualFactory) Last() *ManualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

func (f *ManualFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}
