package service

import (
	"context"
	"sync"
	"time"

	"dsaboost/internal/platform/clock"
)

// TickLoop drives the countdown. At most one loop is outstanding; every
// Start gets a new generation so ticks from a cancelled loop can be told
// apart from the live one.
type TickLoop struct {
	newTicker clock.TickerFactory
	interval  time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewTickLoop(newTicker clock.TickerFactory, interval time.Duration) *TickLoop {
	if newTicker == nil {
		newTicker = clock.NewSystemTicker
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &TickLoop{newTicker: newTicker, interval: interval}
}

// Start launches the loop unless one is already running and returns the
// generation of the live loop.
func (l *TickLoop) Start(ctx context.Context, onTick func(gen uint64)) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return l.gen
	}
	l.gen++
	gen := l.gen
	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	ticks, stop := l.newTicker(l.interval)

	go func() {
		defer stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticks:
				if loopCtx.Err() != nil {
					return
				}
				onTick(gen)
			}
		}
	}()
	return gen
}

// Stop cancels the live loop without waiting for it to exit.
func (l *TickLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *TickLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Live reports whether gen belongs to the running loop.
func (l *TickLoop) Live(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil && gen == l.gen
}
