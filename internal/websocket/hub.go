package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TokenVerifier is satisfied by middleware.IdentityAuth.
type TokenVerifier interface {
	Parse(token string) (models.Identity, error)
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans generation updates out to each subject's open sockets. With Redis it
// relays the per-subject pub/sub channel; without it, Publish delivers locally.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	redisClient *redis.Client
	verifier    TokenVerifier
	cancelFuncs map[string]context.CancelFunc
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, verifier TokenVerifier, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		connections: make(map[string][]*client),
		redisClient: redisClient,
		verifier:    verifier,
		cancelFuncs: make(map[string]context.CancelFunc),
		log:         log,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := h.verifier.Parse(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	h.registerConnection(id.ExternalID, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(id.ExternalID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) registerConnection(subject string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[subject] = append(h.connections[subject], c)

	// Start pub/sub subscription if this is the first connection for this subject
	if len(h.connections[subject]) == 1 && h.redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[subject] = cancel
		go h.subscribeToPubSub(ctx, subject)
	}

	h.log.Info("websocket connected", "subject", subject, "connections", len(h.connections[subject]))
}

func (h *Hub) unregisterConnection(subject string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[subject]
	for i, existing := range conns {
		if existing == c {
			h.connections[subject] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[subject]) == 0 {
		delete(h.connections, subject)
		if cancel, ok := h.cancelFuncs[subject]; ok {
			cancel()
			delete(h.cancelFuncs, subject)
		}
	}

	h.log.Info("websocket disconnected", "subject", subject)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, subject string) {
	pubsub := h.redisClient.Subscribe(ctx, services.UpdatesChannel(subject))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(subject, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(subject string, data []byte) {
	h.mu.RLock()
	conns := append([]*client(nil), h.connections[subject]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.log.Debug("websocket write failed", "subject", subject, "error", err)
		}
	}
}

// Publish delivers msg to the subject's sockets on this instance. It lets the
// hub stand in for the Redis notifier when Redis is not configured.
func (h *Hub) Publish(ctx context.Context, subject string, msg models.WSMessage) {
	if subject == "" {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(subject, data)
}

// Connections reports how many sockets subject has open.
func (h *Hub) Connections(subject string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[subject])
}
