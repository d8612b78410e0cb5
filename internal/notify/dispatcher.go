// Package notify delivers committed booking events to the outside world
// without holding up the booking path.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/masterries/AppointmentManager/internal/domain"
)

const tracerName = "github.com/masterries/AppointmentManager/internal/notify"

// Sender delivers one event. It may block up to the context deadline.
type Sender interface {
	Send(ctx context.Context, ev domain.Event) error
}

type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

// Dispatcher queues events and hands them to a Sender from a fixed worker
// pool. Publish never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	sender      Sender
	log         *slog.Logger
	queue       chan queued
	workers     int
	sendTimeout time.Duration
	tracer      trace.Tracer

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup

	dropped atomic.Int64
}

type queued struct {
	ctx context.Context
	ev  domain.Event
}

func NewDispatcher(sender Sender, log *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		sender:      sender,
		log:         log.With(slog.String("component", "notify.dispatcher")),
		queue:       make(chan queued, cfg.QueueSize),
		workers:     cfg.Workers,
		sendTimeout: cfg.SendTimeout,
		tracer:      otel.Tracer(tracerName),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Publish enqueues ev. Only the trace of ctx is kept; its deadline is not.
func (d *Dispatcher) Publish(ctx context.Context, ev domain.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	attrs := []any{
		slog.String("event_id", ev.ID.String()),
		slog.String("event_type", string(ev.Type)),
	}
	if d.closed {
		d.log.WarnContext(ctx, "event dropped after shutdown", attrs...)
		return
	}
	detached := trace.ContextWithSpanContext(context.Background(), trace.SpanContextFromContext(ctx))
	select {
	case d.queue <- queued{ctx: detached, ev: ev}:
	default:
		d.dropped.Add(1)
		d.log.WarnContext(ctx, "notification queue full, event dropped", attrs...)
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be sent or for
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for q := range d.queue {
		d.send(q)
	}
}

func (d *Dispatcher) send(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, d.sendTimeout)
	defer cancel()

	ctx, span := d.tracer.Start(ctx, "notify.send", trace.WithSpanKind(trace.SpanKindProducer), trace.WithAttributes(
		attribute.String("event.id", q.ev.ID.String()),
		attribute.String("event.type", string(q.ev.Type)),
	))
	defer span.End()

	if err := d.sender.Send(ctx, q.ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelError
		if errors.Is(err, context.DeadlineExceeded) {
			level = slog.LevelWarn
		}
		d.log.Log(ctx, level, "notification send failed",
			slog.String("event_id", q.ev.ID.String()),
			slog.String("event_type", string(q.ev.Type)),
			slog.String("err", err.Error()),
		)
	}
}
