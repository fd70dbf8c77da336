package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher runs backend I/O away from the tick path.
type Dispatcher interface {
	Go(queue string, fn func(ctx context.Context))
	Close(ctx context.Context) error
}

const queueSize = 128

// AsyncDispatcher keeps one ordered worker per queue name. A full queue
// drops the job: timer writes are advisory and the next tick rewrites state.
type AsyncDispatcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.Mutex
	queues map[string]chan func(context.Context)
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncDispatcher(logger *slog.Logger) *AsyncDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncDispatcher{ctx: ctx, cancel: cancel, logger: logger, queues: map[string]chan func(context.Context){}}
}

func (d *AsyncDispatcher) Go(queue string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	ch, ok := d.queues[queue]
	if !ok {
		ch = make(chan func(context.Context), queueSize)
		d.queues[queue] = ch
		d.wg.Add(1)
		go d.work(ch)
	}
	select {
	case ch <- fn:
	default:
		d.logger.Warn("dispatch queue full, dropping job", "component", "timer", "queue", queue)
	}
}

func (d *AsyncDispatcher) work(ch chan func(context.Context)) {
	defer d.wg.Done()
	for fn := range ch {
		fn(d.ctx)
	}
}

// Close stops accepting jobs and waits for queued ones until ctx expires.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.queues {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	defer d.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InlineDispatcher runs jobs on the calling goroutine.
type InlineDispatcher struct{}

func (InlineDispatcher) Go(_ string, fn func(ctx context.Context)) {
	fn(context.Background())
}

func (InlineDispatcher) Close(context.Context) error { return nil }

const DefaultDrainTimeout = 5 * time.Second
