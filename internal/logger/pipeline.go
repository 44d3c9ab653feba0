package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultAsyncBufferSize   = 1024
	defaultAsyncFlushTimeout = 5 * time.Second
)

// MultiHandler fans records out to several handlers, cloning the record for
// each so attribute mutation in one cannot leak into another.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a MultiHandler. Nil handlers are skipped.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	mh := &MultiHandler{}
	for _, h := range handlers {
		if h != nil {
			mh.handlers = append(mh.handlers, h)
		}
	}
	return mh
}

// Enabled reports whether any handler accepts the level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle dispatches the record to every enabled handler and joins their errors.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(x slog.Handler) slog.Handler { return x.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(x slog.Handler) slog.Handler { return x.WithGroup(name) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = fn(handler)
	}
	return &MultiHandler{handlers: next}
}

// AsyncOptions configures the async shipping queue.
type AsyncOptions struct {
	BufferSize   int
	FlushTimeout time.Duration
}

type queuedRecord struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// asyncQueue is shared by every handler derived from one AsyncHandler.
type asyncQueue struct {
	ch           chan queuedRecord
	flushTimeout time.Duration
	mu           sync.RWMutex // guards closed against sends on a closed channel
	closed       bool
	dropped      atomic.Uint64
	wg           sync.WaitGroup
}

// AsyncHandler hands records to a background goroutine so a slow remote
// sink never blocks a request. Records are dropped when the queue is full.
type AsyncHandler struct {
	queue   *asyncQueue
	handler slog.Handler
}

// NewAsyncHandler starts the queue worker for handler.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	size := opts.BufferSize
	if size <= 0 {
		size = defaultAsyncBufferSize
	}
	flush := opts.FlushTimeout
	if flush <= 0 {
		flush = defaultAsyncFlushTimeout
	}

	q := &asyncQueue{
		ch:           make(chan queuedRecord, size),
		flushTimeout: flush,
	}
	q.wg.Go(func() {
		for rec := range q.ch {
			_ = rec.handler.Handle(rec.ctx, rec.record)
		}
	})
	return &AsyncHandler{queue: q, handler: handler}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enqueues a clone of the record. It never blocks.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.handler.Enabled(ctx, r.Level) {
		return nil
	}
	h.queue.mu.RLock()
	defer h.queue.mu.RUnlock()
	if h.queue.closed {
		return nil
	}
	select {
	case h.queue.ch <- queuedRecord{ctx: context.WithoutCancel(ctx), record: r.Clone(), handler: h.handler}:
	default:
		h.queue.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{queue: h.queue, handler: h.handler.WithAttrs(attrs)}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{queue: h.queue, handler: h.handler.WithGroup(name)}
}

// Dropped returns how many records were discarded because the queue was full.
func (h *AsyncHandler) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return h.queue.dropped.Load()
}

// Shutdown stops accepting records and waits for the queue to drain, up to
// ctx's deadline or the flush timeout when ctx has none.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	h.queue.mu.Lock()
	if h.queue.closed {
		h.queue.mu.Unlock()
		return nil
	}
	h.queue.closed = true
	close(h.queue.ch)
	h.queue.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.queue.flushTimeout)
		defer cancel()
	}

	drained := make(chan struct{})
	go func() {
		h.queue.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
