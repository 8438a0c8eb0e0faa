package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pet-companion/internal/domain/pets"

	"github.com/gorilla/websocket"
)

// CurrentFunc devuelve el estado actual para el primer frame de cada cliente.
type CurrentFunc func(ctx context.Context) (pets.Pet, error)

// Handler hace el upgrade y registra el cliente. Si current no es nil, el
// cliente recibe el estado actual apenas se conecta.
func (h *Hub) Handler(current CurrentFunc, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade ya respondió con el error HTTP.
			h.log.Warn("websocket upgrade failed", map[string]any{"err": err})
			return
		}

		c := newClient(h, conn)
		if !h.register(c) {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}

		if current != nil {
			if p, err := current(r.Context()); err == nil {
				if b, err := encodePet(p); err == nil {
					h.mu.RLock()
					c.enqueue(b)
					h.mu.RUnlock()
				}
			}
		}

		c.start()
	}
}

// originChecker: lista vacía o "*" acepta cualquier origen.
// Sin header Origin (clientes no-browser) siempre se acepta.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
