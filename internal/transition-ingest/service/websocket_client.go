package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

const DefaultSource = "substrate"

type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// WSClient consome transições propostas do feed WebSocket do substrato
// e as repassa para o tópico Kafka do verdict-worker.
type WSClient struct {
	URL       string        // endpoint WebSocket do substrato
	Log       *zap.Logger   // Logger estruturado
	Out       Publisher     // tópico de transições propostas
	DLQ       Publisher     // opcional; recebe mensagens que não decodificam
	Reconnect time.Duration // espera antes de reconectar (0 = 3s)

	OnForwarded func()
	OnError     func(string)
	Now         func() time.Time
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar até o contexto ser cancelado.
func (c *WSClient) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			c.Log.Info("context canceled, stopping WS client")
			return
		}
		if err := c.connectAndListen(ctx); err != nil {
			c.Log.Warn("connection closed", zap.Error(err))
			c.fail("connection")
		}
		select {
		case <-ctx.Done():
		case <-time.After(c.reconnect()):
		}
	}
}

// connectAndListen estabelece a conexão e processa mensagens até erro ou cancelamento
func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to substrate WS", zap.String("url", c.URL))

	// ReadMessage não respeita ctx; fechar a conexão destrava a leitura
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		c.Forward(ctx, message)
	}
}

var errMissingTxID = errors.New("transition without tx id")

// Forward normaliza uma mensagem do feed e publica com o tx id como chave.
// Mensagens inválidas vão para o DLQ.
func (c *WSClient) Forward(ctx context.Context, message []byte) {
	var ev events.TransitionProposed
	err := json.Unmarshal(message, &ev)
	if err == nil && ev.Transaction.ID == "" {
		err = errMissingTxID
	}
	if err != nil {
		c.Log.Warn("invalid message", zap.Error(err))
		c.fail("decode")
		if c.DLQ != nil {
			if err := c.DLQ.Publish(ctx, "", message); err != nil {
				c.Log.Error("dlq publish failed", zap.Error(err))
				c.fail("dlq")
			}
		}
		return
	}

	if ev.Source == "" {
		ev.Source = DefaultSource
	}
	if ev.TsUnixMs == 0 {
		ev.TsUnixMs = c.now().UnixMilli()
	}
	b, _ := json.Marshal(ev)
	if err := c.Out.Publish(ctx, ev.Transaction.ID, b); err != nil {
		c.Log.Error("failed to publish to Kafka", zap.String("tx_id", ev.Transaction.ID), zap.Error(err))
		c.fail("publish")
		return
	}
	if c.OnForwarded != nil {
		c.OnForwarded()
	}
}

func (c *WSClient) fail(stage string) {
	if c.OnError != nil {
		c.OnError(stage)
	}
}

func (c *WSClient) reconnect() time.Duration {
	if c.Reconnect > 0 {
		return c.Reconnect
	}
	return 3 * time.Second
}

func (c *WSClient) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
