// internal/websocket/handler.go
package websocket

import (
	"context"
	"fmt"
	"sync"

	wstypes "salescrm-service/internal/domain/websocket"
)

// MessageHandler handles client messages of one domain
type MessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error
	SupportedEvents() []wstypes.EventType
}

// HandlerRegistry routes inbound event types to the handler that claimed them.
// Lookups run concurrently from every client read pump.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[wstypes.EventType]MessageHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[wstypes.EventType]MessageHandler)}
}

// Register claims the handler's events. An event already claimed by another
// handler is rejected and nothing is registered.
func (r *HandlerRegistry) Register(handler MessageHandler) error {
	events := handler.SupportedEvents()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range events {
		if existing, ok := r.handlers[ev]; ok && existing != handler {
			return fmt.Errorf("event %q already has a handler", ev)
		}
	}
	for _, ev := range events {
		r.handlers[ev] = handler
	}
	return nil
}

func (r *HandlerRegistry) GetHandler(eventType wstypes.EventType) (MessageHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[eventType]
	return handler, ok
}
