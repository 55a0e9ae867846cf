package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickWait = time.Second

func newManualTimer(initial int, onTick func(int)) (*Timer, *ManualFactory) {
	f := &ManualFactory{}
	return New(Options{InitialTime: initial, OnTick: onTick, NewTicker: f.New}), f
}

func TestTimerCountsUpOnTicks(t *testing.T) {
	var last atomic.Int64
	tm, f := newManualTimer(0, func(n int) { last.Store(int64(n)) })

	tm.Start()
	require.True(t, tm.IsRunning())
	tk := f.Last()
	require.NotNil(t, tk)

	for i := 0; i < 3; i++ {
		require.True(t, tk.Tick(tickWait))
	}
	assert.Eventually(t, func() bool { return last.Load() == 3 }, tickWait, 5*time.Millisecond)
	assert.Equal(t, 3, tm.Time())
}

func TestTimerPauseStopsTicker(t *testing.T) {
	tm, f := newManualTimer(5, nil)
	tm.Start()
	tk := f.Last()
	require.True(t, tk.Tick(tickWait))
	assert.Eventually(t, func() bool { return tm.Time() == 6 }, tickWait, 5*time.Millisecond)

	tm.Pause()
	assert.False(t, tm.IsRunning())
	assert.True(t, tk.Stopped())
	assert.False(t, tk.Tick(10*time.Millisecond))
	assert.Equal(t, 6, tm.Time())
}

func TestTimerStartIsIdempotent(t *testing.T) {
	tm, f := newManualTimer(0, nil)
	tm.Start()
	tm.Start()
	assert.Equal(t, 1, f.Count())
	tm.Pause()
	tm.Pause()
	assert.False(t, tm.IsRunning())
}

func TestTimerResumeKeepsAccumulatedTime(t *testing.T) {
	tm, f := newManualTimer(0, nil)
	tm.Start()
	require.True(t, f.Last().Tick(tickWait))
	assert.Eventually(t, func() bool { return tm.Time() == 1 }, tickWait, 5*time.Millisecond)
	tm.Pause()

	tm.Start()
	assert.Equal(t, 2, f.Count())
	require.True(t, f.Last().Tick(tickWait))
	assert.Eventually(t, func() bool { return tm.Time() == 2 }, tickWait, 5*time.Millisecond)
}

func TestTimerResetAndSetTime(t *testing.T) {
	tm, f := newManualTimer(10, nil)
	tm.Start()
	require.True(t, f.Last().Tick(tickWait))
	assert.Eventually(t, func() bool { return tm.Time() == 11 }, tickWait, 5*time.Millisecond)

	tm.Reset()
	assert.False(t, tm.IsRunning())
	assert.Equal(t, 10, tm.Time())

	tm.SetTime(42)
	assert.Equal(t, 42, tm.Time())
}

func TestTimerDefaultsToOneSecondInterval(t *testing.T) {
	var got time.Duration
	tm := New(Options{NewTicker: func(d time.Duration) Ticker {
		got = d
		return NewManualTicker()
	}})
	tm.Start()
	defer tm.Pause()
	assert.Equal(t, time.Second, got)
}
