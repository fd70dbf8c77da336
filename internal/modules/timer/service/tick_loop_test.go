package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dsaboost/internal/modules/timer/service"
)

type manualTicker struct {
	mu      sync.Mutex
	created int
	chans   []chan time.Time
	stopped int
}

func (m *manualTicker) factory(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time)
	m.created++
	m.chans = append(m.chans, ch)
	return ch, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

func (m *manualTicker) fire(i int) {
	m.mu.Lock()
	ch := m.chans[i]
	m.mu.Unlock()
	ch <- time.Now()
}

func TestTickLoopSingleOutstanding(t *testing.T) {
	t.Parallel()
	ticker := &manualTicker{}
	loop := service.NewTickLoop(ticker.factory, time.Second)

	var ticks atomic.Int32
	gen1 := loop.Start(context.Background(), func(uint64) { ticks.Add(1) })
	gen2 := loop.Start(context.Background(), func(uint64) { ticks.Add(100) })
	if gen1 != gen2 {
		t.Fatalf("second start should return the live generation")
	}
	if ticker.created != 1 {
		t.Fatalf("expected one ticker, got %d", ticker.created)
	}
	ticker.fire(0)
	ticker.fire(0)
	loop.Stop()
	if got := ticks.Load(); got < 1 || got > 2 {
		t.Fatalf("unexpected tick count %d", got)
	}
	if loop.Running() || loop.Live(gen1) {
		t.Fatalf("loop should be stopped")
	}
}

func TestTickLoopRestartNewGeneration(t *testing.T) {
	t.Parallel()
	ticker := &manualTicker{}
	loop := service.NewTickLoop(ticker.factory, time.Second)
	gen1 := loop.Start(context.Background(), func(uint64) {})
	loop.Stop()
	gen2 := loop.Start(context.Background(), func(uint64) {})
	defer loop.Stop()
	if gen1 == gen2 || loop.Live(gen1) || !loop.Live(gen2) {
		t.Fatalf("restart should bump the generation: %d %d", gen1, gen2)
	}
	if ticker.created != 2 {
		t.Fatalf("expected two tickers, got %d", ticker.created)
	}
}

func TestAsyncDispatcherKeepsOrderAndDrains(t *testing.T) {
	t.Parallel()
	d := service.NewAsyncDispatcher(nil)
	var mu sync.Mutex
	got := []int{}
	for i := 0; i < 20; i++ {
		i := i
		d.Go("local", func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("expected 20 jobs, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("jobs out of order: %v", got)
		}
	}
	d.Go("local", func(context.Context) { t.Errorf("job after close must not run") })
}
