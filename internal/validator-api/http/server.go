package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/internal/shared/metrics"
	"github.com/radieske/league-ledger-validator/internal/validator-api/repo"
	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
)

// VerdictReader lê vereditos persistidos pelo verdict-worker
type VerdictReader interface {
	GetVerdict(ctx context.Context, txID string) (*events.TransitionVerdict, error)
	TopRejections(ctx context.Context, limit int) ([]repo.RuleCount, error)
}

type VerdictCache interface {
	GetVerdict(ctx context.Context, txID string) (*events.TransitionVerdict, bool, error)
	SetVerdict(ctx context.Context, v events.TransitionVerdict) error
}

// API expõe validação síncrona, consulta de vereditos e cotações do motor de payout
type API struct {
	Log      *zap.Logger
	Policy   validator.MalformedPolicy // usada quando a requisição não informa ?policy=
	ReadRepo VerdictReader
	Cache    VerdictCache
	Metrics  *metrics.ValidationMetrics // opcional
	WS       http.HandlerFunc           // handler do hub; nil desliga /ws

	Now   func() time.Time
	NewID func() string
}

const maxBody = 1 << 20

// Router retorna o roteador HTTP com os endpoints REST, já com CORS
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/transitions/validate", a.validateTransition)
	r.Get("/v1/verdicts/{txId}", a.getVerdict)
	r.Get("/v1/rejections/top", a.topRejections)

	r.Post("/v1/quotes/betslip", a.quoteBetslip)
	r.Post("/v1/quotes/odds-lock", a.quoteOddsLock)
	r.Post("/v1/quotes/lp/deposit", a.quoteDeposit)
	r.Post("/v1/quotes/lp/withdraw", a.quoteWithdraw)
	r.Get("/v1/matches/outcome", a.matchOutcome)

	if a.WS != nil {
		r.Get("/ws", a.WS)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errTrailingData = errors.New("unexpected data after JSON body")

// decodeBody é estrito como o decoder de payloads: campo desconhecido é erro
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}
