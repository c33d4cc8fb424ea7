package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/internal/verdict-worker/pubsub"
	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

var ErrMissingTxID = errors.New("transition without tx id")

// MessageReader é o subconjunto do *kafka.Reader usado com commit manual
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type TransitionValidator interface {
	Validate(tx ledger.Transaction, witness string) validator.Verdict
	Policy() validator.MalformedPolicy
}

type VerdictStore interface {
	SaveVerdict(ctx context.Context, v events.TransitionVerdict, source string) error
}

type VerdictCache interface {
	Get(ctx context.Context, txID string) (*events.TransitionVerdict, error)
	Set(ctx context.Context, v events.TransitionVerdict) error
}

// Publisher cobre tanto o tópico de vereditos quanto o DLQ.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome transições propostas, valida e distribui o veredito:
// Postgres, cache Redis, tópico Kafka e Redis Pub/Sub (WS da validator-api)
type Processor struct {
	Log         *zap.Logger
	Reader      MessageReader
	Validator   TransitionValidator
	Store       VerdictStore
	Cache       VerdictCache
	Verdicts    Publisher
	DLQ         Publisher
	Broadcaster Broadcaster
	Channel     string // canal Pub/Sub dos vereditos

	OnConsumed func()                                      // métricas (counter++)
	OnVerdict  func(v validator.Verdict, el time.Duration) // métricas
	OnError    func(string)                                // métricas por fase

	Now     func() time.Time
	NewID   func() string
	Backoff func(attempt int) time.Duration // espera entre tentativas de persistência
}

const persistAttempts = 3

// Run inicia o loop principal de consumo até o contexto ser cancelado.
// O offset só é commitado depois que o veredito foi entregue; uma falha repete
// a mesma mensagem, sem avançar a partição.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		if err := p.handleUntilDelivered(ctx, m); err != nil {
			return err
		}
		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// sem commit a mensagem volta no rebalance; o cache/ON CONFLICT segura a duplicata
			p.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
			p.fail("commit")
		}
	}
}

// handleUntilDelivered repete Handle até dar certo; só devolve erro de contexto
func (p *Processor) handleUntilDelivered(ctx context.Context, m kafka.Message) error {
	for {
		err := p.Handle(ctx, m)
		if err == nil {
			return nil
		}
		p.Log.Warn("transition not processed, retrying", zap.ByteString("key", m.Key), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(persistAttempts)):
		}
	}
}

// Handle processa uma mensagem. Devolve erro só quando o veredito não foi entregue;
// mensagens inválidas vão para o DLQ e não contam como erro de processamento.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	var ev events.TransitionProposed
	if err := decodeProposal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		p.fail("decode")
		p.deadLetter(ctx, m)
		return nil
	}

	txID := ev.Transaction.ID
	if cached, err := p.Cache.Get(ctx, txID); err != nil {
		// cache fora do ar não bloqueia validação; o ON CONFLICT no banco segura duplicatas
		p.Log.Warn("redis get failed", zap.Error(err))
		p.fail("cache_get")
	} else if cached != nil {
		p.Log.Debug("verdict already issued", zap.String("txId", txID))
		return nil
	}

	start := p.now()
	verdict := p.Validator.Validate(ev.Transaction, ev.Witness)
	elapsed := p.now().Sub(start)
	if p.OnVerdict != nil {
		p.OnVerdict(verdict, elapsed)
	}

	out := verdict.Event(p.newID(), txID, p.Validator.Policy(), p.now())
	if err := p.persist(ctx, out, ev.Source); err != nil {
		p.fail("db")
		return fmt.Errorf("persist verdict %s: %w", txID, err)
	}

	b, err := json.Marshal(out)
	if err != nil {
		p.fail("encode")
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := p.Verdicts.Publish(ctx, txID, b); err != nil {
		p.fail("publish")
		return err
	}

	// cache só depois do publish: ele marca o veredito como entregue
	if err := p.Cache.Set(ctx, out); err != nil {
		p.Log.Warn("redis set failed", zap.Error(err))
		p.fail("cache_set")
	}

	p.broadcast(out)
	p.Log.Info("verdict issued",
		zap.String("txId", txID),
		zap.Bool("accepted", out.Accepted),
		zap.String("source", ev.Source),
	)
	return nil
}

func decodeProposal(b []byte, ev *events.TransitionProposed) error {
	if err := json.Unmarshal(b, ev); err != nil {
		return err
	}
	if ev.Transaction.ID == "" {
		return ErrMissingTxID
	}
	return nil
}

// persist tenta até persistAttempts vezes, com espera crescente
func (p *Processor) persist(ctx context.Context, v events.TransitionVerdict, source string) error {
	var err error
	for attempt := 0; attempt < persistAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoff(attempt)):
			}
		}
		if err = p.Store.SaveVerdict(ctx, v, source); err == nil {
			return nil
		}
		p.Log.Warn("db save verdict failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return err
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.Publish(ctx, string(m.Key), m.Value); err != nil {
		p.Log.Error("dlq publish failed", zap.Error(err))
		p.fail("dlq")
	}
}

// broadcast: falha só é registrada, o veredito já foi publicado no Kafka
func (p *Processor) broadcast(v events.TransitionVerdict) {
	if p.Broadcaster == nil {
		return
	}
	b, _ := json.Marshal(pubsub.WSVerdict{TxID: v.TxID, Payload: v})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := p.Broadcaster.Publish(ctx, p.Channel, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.Error(err))
		p.fail("broadcast")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *Processor) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Processor) backoff(attempt int) time.Duration {
	if p.Backoff != nil {
		return p.Backoff(attempt)
	}
	return time.Duration(300*attempt) * time.Millisecond
}
