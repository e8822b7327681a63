// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "salescrm-service/internal/domain/websocket"
	"salescrm-service/internal/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenVerifier validates bearer access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

// RevocationChecker reports tokens revoked before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Recipient addresses one user of one tenant.
type Recipient struct {
	TenantID   uuid.UUID
	IdentityID int64
}

type Hub struct {
	// Registered clients by recipient
	clients map[Recipient]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	handlerRegistry *HandlerRegistry

	verifier TokenVerifier
	revoked  RevocationChecker
	logger   *zap.Logger
}

type BroadcastMessage struct {
	Recipients []Recipient
	Channel    wstypes.ChannelType
	Message    *wstypes.WSMessage
}

func NewHub(verifier TokenVerifier, revoked RevocationChecker, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:         make(map[Recipient]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		verifier:        verifier,
		revoked:         revoked,
		logger:          logger,
	}
}

// AuthenticateClient validates the JWT token and returns the client identity
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	if h.revoked != nil {
		revoked, err := h.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	tenantID, err := claims.Tenant()
	if err != nil {
		return nil, err
	}

	return &ClientAuth{
		TenantID:   tenantID,
		IdentityID: claims.IdentityID,
		SessionID:  claims.ID,
		Roles:      claims.Roles,
	}, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	if err := h.handlerRegistry.Register(handler); err != nil {
		h.logger.Warn("websocket handler not registered", zap.Error(err))
	}
}

// HandleClientMessage processes a message from a client using registered handlers
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return nil
	}
	return handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := client.Recipient()
	if h.clients[key] == nil {
		h.clients[key] = make(map[*Client]bool)
	}
	h.clients[key][client] = true

	h.logger.Info("websocket client connected",
		zap.String("tenant_id", key.TenantID.String()),
		zap.Int64("identity_id", key.IdentityID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"identity_id": key.IdentityID,
		"tenant_id":   key.TenantID,
		"session_id":  client.sessionID,
		"channels":    client.Channels(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := client.Recipient()
	if clients, ok := h.clients[key]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, key)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("identity_id", key.IdentityID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, recipient := range msg.Recipients {
		for client := range h.clients[recipient] {
			if client.IsSubscribed(msg.Channel) {
				client.SendMessage(msg.Message)
			}
		}
	}
}

// enqueue hands a message to Run without blocking the caller.
func (h *Hub) enqueue(msg *BroadcastMessage) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message",
			zap.String("type", string(msg.Message.Type)),
		)
		return false
	}
}

// PushNotification delivers a notification to every connection of the recipient
func (h *Hub) PushNotification(to Recipient, data *wstypes.NotificationData) bool {
	return h.enqueue(&BroadcastMessage{
		Recipients: []Recipient{to},
		Channel:    wstypes.ChannelNotifications,
		Message:    wstypes.NewMessage(wstypes.EventTypeNotification, data),
	})
}

// PushUnreadCount delivers the recipient's unread notification count
func (h *Hub) PushUnreadCount(to Recipient, count int) bool {
	return h.enqueue(&BroadcastMessage{
		Recipients: []Recipient{to},
		Channel:    wstypes.ChannelNotifications,
		Message: wstypes.NewMessage(wstypes.EventTypeNotificationCount, map[string]interface{}{
			"unread_count": count,
		}),
	})
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(to Recipient) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[to]) > 0
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
		delete(h.clients, key)
	}
}
