package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub expõe as transições da temporada como um feed WebSocket no formato do
// substrato, para o transition-ingest consumir. Publish bloqueia até existir
// ao menos um cliente conectado, senão os primeiros passos se perderiam.
type Hub struct {
	Log *zap.Logger

	OnConnected func(delta int)
	OnSent      func()

	mu      sync.Mutex
	clients map[string]*websocket.Conn
	ready   chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{Log: log, clients: make(map[string]*websocket.Conn), ready: make(chan struct{})}
}

// ServeWS registra o cliente e descarta o que ele enviar até desconectar
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	id := uuid.NewString()
	h.add(id, conn)

	go func() {
		defer h.remove(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	if len(h.clients) == 1 {
		close(h.ready)
	}
	h.connected(1)
	h.Log.Info("feed client connected", zap.String("client_id", id))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.clients[id]
	if !ok {
		return
	}
	_ = conn.Close()
	delete(h.clients, id)
	if len(h.clients) == 0 {
		h.ready = make(chan struct{})
	}
	h.connected(-1)
	h.Log.Info("feed client disconnected", zap.String("client_id", id))
}

// Clients devolve quantos consumidores estão conectados
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish espera um consumidor e envia o evento a todos os conectados.
// Cliente que falha na escrita é removido.
func (h *Hub) Publish(ctx context.Context, e events.TransitionProposed) error {
	h.mu.Lock()
	ready := h.ready
	h.mu.Unlock()
	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	msg, err := json.Marshal(e)
	if err != nil {
		return err
	}

	h.mu.Lock()
	var dead []string
	for id, conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.Log.Warn("feed write failed", zap.String("client_id", id), zap.Error(err))
			dead = append(dead, id)
			continue
		}
		if h.OnSent != nil {
			h.OnSent()
		}
	}
	h.mu.Unlock()

	for _, id := range dead {
		h.remove(id)
	}
	return nil
}

func (h *Hub) connected(delta int) {
	if h.OnConnected != nil {
		h.OnConnected(delta)
	}
}
