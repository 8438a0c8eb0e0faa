// Package websocket empuja el estado de la mascota a los clientes conectados.
package websocket

import (
	"context"
	"sync"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/logger"
	"pet-companion/internal/platform/metrics"

	"github.com/goccy/go-json"
)

const (
	MessageTypePetUpdate = "pet_update"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"

	hubBuffer = 64
)

// Message es el frame que viaja por el socket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub implementa pets.Broadcaster. Broadcast nunca bloquea: si el buffer
// está lleno el update se descarta (el siguiente trae el registro completo).
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// stopped: Serve terminó; no se aceptan clientes nuevos.
	stopped bool

	broadcast chan []byte
	log       logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan []byte, hubBuffer),
		log:       log.With(map[string]any{"component": "ws-hub"}),
	}
}

func encodePet(p pets.Pet) ([]byte, error) {
	return json.Marshal(Message{Type: MessageTypePetUpdate, Data: pets.NewPetView(p)})
}

func (h *Hub) Broadcast(p pets.Pet) {
	b, err := encodePet(p)
	if err != nil {
		h.log.Error("encode pet update failed", map[string]any{"err": err})
		return
	}
	select {
	case h.broadcast <- b:
	default:
		metrics.WebSocketDropped.Inc()
		h.log.Warn("hub buffer full, update dropped", nil)
	}
}

// Serve implementa suture.Service: reparte los updates hasta que se cancela ctx.
func (h *Hub) Serve(ctx context.Context) error {
	h.mu.Lock()
	h.stopped = false
	h.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case msg := <-h.broadcast:
			h.fanout(msg)
		}
	}
}

func (h *Hub) String() string { return "ws-hub" }

func (h *Hub) fanout(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.enqueue(msg) {
			metrics.WebSocketDropped.Inc()
		}
	}
}

// register devuelve false si el hub ya se detuvo.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(n))
	h.log.Info("websocket client connected", map[string]any{"client_id": c.id, "total_clients": n})
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.close()
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WebSocketClients.Set(float64(n))
		h.log.Info("websocket client disconnected", map[string]any{"client_id": c.id, "total_clients": n})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	metrics.WebSocketClients.Set(0)
}

// Clients devuelve la cantidad de clientes conectados.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
