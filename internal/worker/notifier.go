package worker

import (
	"context"
	"log/slog"
	"time"

	"shakehouse/internal/service"
)

// Sender delivers a single lifecycle event to the external platform.
type Sender interface {
	Send(ctx context.Context, ev service.Event) error
}

// NotifyWorker drains a bounded queue of lifecycle events and delivers each
// with a small bounded retry. Delivery failures are never visible to the
// request that produced the event; exhausted events are logged as dead
// letters.
type NotifyWorker struct {
	sender   Sender
	queue    chan service.Event
	attempts int
	backoff  time.Duration
	done     chan struct{}
}

func NewNotifyWorker(sender Sender, queueSize int) *NotifyWorker {
	return &NotifyWorker{
		sender:   sender,
		queue:    make(chan service.Event, queueSize),
		attempts: 3,
		backoff:  2 * time.Second,
		done:     make(chan struct{}),
	}
}

// Enqueue hands an event to the worker without blocking. When the queue is
// full the event is dropped and logged; delivery is best-effort.
func (w *NotifyWorker) Enqueue(ev service.Event) {
	select {
	case w.queue <- ev:
	default:
		slog.Warn("notification queue full, dropping event", "event", ev.Kind, "order", ev.Order.ID)
	}
}

// Start runs the delivery loop until ctx is cancelled.
func (w *NotifyWorker) Start(ctx context.Context) {
	slog.Info("starting notification worker")
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification worker stopped")
			return
		case ev := <-w.queue:
			w.deliver(ctx, ev)
		}
	}
}

// Wait blocks until the delivery loop has exited.
func (w *NotifyWorker) Wait() {
	<-w.done
}

func (w *NotifyWorker) deliver(ctx context.Context, ev service.Event) {
	var err error
	for attempt := 1; ; attempt++ {
		err = w.sender.Send(ctx, ev)
		if err == nil {
			slog.Info("notification delivered", "event", ev.Kind, "order", ev.Order.ID)
			return
		}
		slog.Warn("notification delivery failed",
			"event", ev.Kind, "order", ev.Order.ID, "attempt", attempt, "error", err)

		if attempt == w.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff * time.Duration(attempt)):
		}
	}
	slog.Error("notification abandoned", "event", ev.Kind, "order", ev.Order.ID, "error", err)
}
