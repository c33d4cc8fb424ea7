package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// client serializa as escritas: gorilla aceita só um writer por conexão
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msgType int, b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(msgType, b)
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub gerencia conexões WebSocket e assinaturas de vereditos
// subs: mapeia tx id (ou "*") para o conjunto de clientes inscritos
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Cada cliente pode se inscrever em vários tx ids
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.TxID == "" {
				_ = c.writeJSON(map[string]string{"type": "error", "error": "txId required"})
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.TxID]; !ok {
				h.subs[msg.TxID] = make(map[*client]struct{})
			}
			h.subs[msg.TxID][c] = struct{}{}
			h.mu.Unlock()
			_ = c.writeJSON(map[string]string{"type": "subscribed", "txId": msg.TxID})
		case "unsubscribe":
			h.unsubscribe(msg.TxID, c)
		case "ping":
			_ = c.writeJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove o cliente de todas as assinaturas ao desconectar
	h.mu.Lock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(txID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[txID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, txID)
		}
	}
}

// Broadcast envia o veredito para quem assinou o tx id e para quem assinou "*"
func (h *Hub) Broadcast(update VerdictUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[update.TxID])+len(h.subs[AllTransitions]))
	for c := range h.subs[update.TxID] {
		targets = append(targets, c)
	}
	for c := range h.subs[AllTransitions] {
		if _, dup := h.subs[update.TxID][c]; !dup {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range targets {
		_ = c.write(websocket.TextMessage, b)
	}
}

// Subscribers devolve quantos clientes assinam o tx id
func (h *Hub) Subscribers(txID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[txID])
}
