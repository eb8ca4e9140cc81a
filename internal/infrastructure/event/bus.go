// Package event is the in-process domain event bus.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events to subscribed handlers in-process.
//
// In synchronous mode Publish returns after every handler ran. In async
// mode each handler runs on its own goroutine with a context detached from
// the publisher's, so a finished HTTP request does not cancel archiving.
type InMemoryEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	async          bool
	handlerTimeout time.Duration

	// mu guards running and orders wg.Add before Stop's wg.Wait
	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch runs handlers in the background, each bounded by timeout
func WithAsyncDispatch(timeout time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		b.async = true
		b.handlerTimeout = timeout
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:       NewHandlerRegistry(),
		logger:         logger,
		handlerTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.running = true
	return b
}

// Publish hands events to their handlers. Handler failures are logged and
// never returned to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	if !b.running {
		b.mu.RUnlock()
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	if !b.async {
		// handlers may publish in turn
		b.mu.RUnlock()
		for _, event := range events {
			for _, handler := range b.registry.GetHandlers(event.EventType()) {
				b.dispatch(ctx, handler, event)
			}
		}
		return nil
	}
	defer b.mu.RUnlock()

	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			b.wg.Add(1)
			go func(handler shared.EventHandler, event shared.DomainEvent) {
				defer b.wg.Done()
				hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.handlerTimeout)
				defer cancel()
				b.dispatch(hctx, handler, event)
			}(handler, event)
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start resumes delivery after Stop
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	b.logger.Info("event bus started", zap.Bool("async", b.async))
	return nil
}

// Stop refuses new events and waits for running handlers until ctx is done
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped with handlers still running")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("handler failed to process event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
