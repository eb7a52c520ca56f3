package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/events"
	"github.com/spec-kit/ticket-portal/internal/service"
)

const queueSize = 256

// NotificationWorker moves notification delivery off the request path. Events
// are queued by a dispatcher subscription and delivered by one goroutine.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	wg            sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// StartNotificationWorker subscribes the worker to the notified events and
// starts delivering them until ctx is cancelled or Stop is called.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if dispatcher == nil || notifications == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
	}
	for _, eventType := range service.NotifiedEvents {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	w.wg.Add(1)
	go w.run(ctx)
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("notification worker stopped; event dropped", zap.String("event_id", event.ID))
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; event dropped",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.queue:
			if !ok {
				return
			}
			if err := w.notifications.Handle(ctx, event); err != nil {
				w.logger.Warn("notification delivery failed", zap.String("event_id", event.ID), zap.Error(err))
			}
		}
	}
}

// Stop drains queued events and waits for the worker to exit.
func (w *NotificationWorker) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
