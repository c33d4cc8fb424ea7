package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

type sink struct {
	mu   sync.Mutex
	keys []string
	msgs [][]byte
}

func (s *sink) Publish(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	s.msgs = append(s.msgs, payload)
	return nil
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func newClient(out, dlq *sink) *WSClient {
	return &WSClient{
		Log: zap.NewNop(),
		Out: out,
		DLQ: dlq,
		Now: func() time.Time { return time.UnixMilli(1_000) },
	}
}

func TestForward_FillsDefaults(t *testing.T) {
	out, dlq := &sink{}, &sink{}
	c := newClient(out, dlq)

	c.Forward(context.Background(), []byte(`{"transaction":{"id":"tx-1","inputs":[],"outputs":[]}}`))

	require.Equal(t, 1, out.len())
	assert.Equal(t, "tx-1", out.keys[0])
	var ev events.TransitionProposed
	require.NoError(t, json.Unmarshal(out.msgs[0], &ev))
	assert.Equal(t, DefaultSource, ev.Source)
	assert.Equal(t, int64(1_000), ev.TsUnixMs)
	assert.Zero(t, dlq.len())
}

func TestForward_KeepsExplicitSource(t *testing.T) {
	out := &sink{}
	c := newClient(out, &sink{})
	c.Forward(context.Background(), []byte(`{"transaction":{"id":"tx-2"},"source":"node-7","ts_unix_ms":5}`))

	var ev events.TransitionProposed
	require.NoError(t, json.Unmarshal(out.msgs[0], &ev))
	assert.Equal(t, "node-7", ev.Source)
	assert.Equal(t, int64(5), ev.TsUnixMs)
}

func TestForward_InvalidGoesToDLQ(t *testing.T) {
	for name, msg := range map[string]string{
		"garbage":    `not json`,
		"missing id": `{"transaction":{"inputs":[]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			out, dlq := &sink{}, &sink{}
			var stages []string
			c := newClient(out, dlq)
			c.OnError = func(s string) { stages = append(stages, s) }

			c.Forward(context.Background(), []byte(msg))
			assert.Zero(t, out.len())
			require.Equal(t, 1, dlq.len())
			assert.Equal(t, msg, string(dlq.msgs[0]))
			assert.Equal(t, []string{"decode"}, stages)
		})
	}
}

func TestStart_ReadsFeedUntilCancelled(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"transaction":{"id":"a"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"transaction":{"id":"b"}}`))
		// mantém a conexão aberta até o cliente fechar
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	out := &sink{}
	c := newClient(out, &sink{})
	c.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	c.Reconnect = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	forwarded := make(chan struct{}, 2)
	c.OnForwarded = func() { forwarded <- struct{}{} }

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-forwarded:
		case <-time.After(5 * time.Second):
			t.Fatal("feed messages not forwarded")
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop after cancel")
	}
	assert.Equal(t, []string{"a", "b"}, out.keys)
}
