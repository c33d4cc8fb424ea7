package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/internal/shared/metrics"
	"github.com/radieske/league-ledger-validator/internal/validator-api/repo"
	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

type fakeRepo struct {
	verdicts map[string]events.TransitionVerdict
	top      []repo.RuleCount
	err      error
	reads    int
}

func (f *fakeRepo) GetVerdict(_ context.Context, txID string) (*events.TransitionVerdict, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.verdicts[txID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &v, nil
}

func (f *fakeRepo) TopRejections(_ context.Context, limit int) ([]repo.RuleCount, error) {
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

type memCache struct{ m map[string]events.TransitionVerdict }

func (c *memCache) GetVerdict(_ context.Context, txID string) (*events.TransitionVerdict, bool, error) {
	v, ok := c.m[txID]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *memCache) SetVerdict(_ context.Context, v events.TransitionVerdict) error {
	c.m[v.TxID] = v
	return nil
}

func newAPI() (*API, *fakeRepo, *memCache) {
	rp := &fakeRepo{verdicts: map[string]events.TransitionVerdict{}}
	c := &memCache{m: map[string]events.TransitionVerdict{}}
	return &API{
		Log:      zap.NewNop(),
		Policy:   validator.RejectMalformed,
		ReadRepo: rp,
		Cache:    c,
		Now:      func() time.Time { return time.Unix(1_700_000_000, 0).UTC() },
		NewID:    func() string { return "v-1" },
	}, rp, c
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func matchTx(t *testing.T, m assets.Match) string {
	t.Helper()
	r, err := assets.Encode(ledger.KindMatch, m)
	require.NoError(t, err)
	b, err := json.Marshal(map[string]any{"transaction": ledger.Transaction{ID: "tx-9", Outputs: []ledger.Record{r}}})
	require.NoError(t, err)
	return string(b)
}

func validMatch() assets.Match {
	return assets.Match{
		SeasonID: "s1", Turn: 1, HomeTeam: "Arsenal", AwayTeam: "Chelsea",
		HomeOdds: 20_000, AwayOdds: 35_000, DrawOdds: 30_000,
		Result: assets.Pending,
	}
}

func TestValidateTransition(t *testing.T) {
	a, _, _ := newAPI()
	a.Metrics = metrics.NewValidationMetrics(prometheus.NewRegistry())
	h := a.Router()

	rr := do(t, h, http.MethodPost, "/v1/transitions/validate", matchTx(t, validMatch()))
	require.Equal(t, http.StatusOK, rr.Code)
	v := decode[events.TransitionVerdict](t, rr)
	assert.True(t, v.Accepted)
	assert.Equal(t, "tx-9", v.TxID)
	assert.Equal(t, "v-1", v.VerdictID)
	assert.Equal(t, "reject", v.Policy)

	bad := validMatch()
	bad.HomeTeam = "Real Madrid"
	rr = do(t, h, http.MethodPost, "/v1/transitions/validate?policy=exclude", matchTx(t, bad))
	require.Equal(t, http.StatusOK, rr.Code)
	v = decode[events.TransitionVerdict](t, rr)
	assert.False(t, v.Accepted)
	assert.Equal(t, "exclude", v.Policy)
	require.Len(t, v.Outcomes, 1)
	assert.Equal(t, "match.creation.unknown_team", v.Outcomes[0].Rule)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Transitions.WithLabelValues("rejected")))
}

func TestValidateTransition_BadRequests(t *testing.T) {
	a, _, _ := newAPI()
	h := a.Router()

	for name, tc := range map[string]struct{ path, body string }{
		"bad json":       {"/v1/transitions/validate", `{"transaction":`},
		"unknown field":  {"/v1/transitions/validate", `{"transaction":{},"extra":1}`},
		"trailing data":  {"/v1/transitions/validate", `{"transaction":{}} x`},
		"unknown policy": {"/v1/transitions/validate?policy=lenient", `{"transaction":{}}`},
	} {
		t.Run(name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestGetVerdict_CacheThenRepo(t *testing.T) {
	a, rp, c := newAPI()
	h := a.Router()
	rp.verdicts["tx-1"] = events.TransitionVerdict{VerdictID: "v-7", TxID: "tx-1", Accepted: true}

	rr := do(t, h, http.MethodGet, "/v1/verdicts/tx-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v-7", decode[events.TransitionVerdict](t, rr).VerdictID)
	assert.Contains(t, c.m, "tx-1", "repo hit warms the cache")

	rr = do(t, h, http.MethodGet, "/v1/verdicts/tx-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, rp.reads, "second read served from cache")

	rr = do(t, h, http.MethodGet, "/v1/verdicts/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rp.err = errors.New("pg down")
	rr = do(t, h, http.MethodGet, "/v1/verdicts/other", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestTopRejections(t *testing.T) {
	a, rp, _ := newAPI()
	h := a.Router()

	rr := do(t, h, http.MethodGet, "/v1/rejections/top", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rp.top = []repo.RuleCount{{Kind: "match", Rule: "match.creation.same_team", Count: 4}, {Kind: "season", Rule: "season.update.turn", Count: 1}}
	rr = do(t, h, http.MethodGet, "/v1/rejections/top?limit=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]repo.RuleCount](t, rr), 1)

	rr = do(t, h, http.MethodGet, "/v1/rejections/top?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuoteBetslip(t *testing.T) {
	a, _, _ := newAPI()
	h := a.Router()

	parlay := `{"bet_type":"Parlay","stake":100,"badges":[],"bets":[
		{"match_id":"m0","prediction":"HomeWin","odds":20000},
		{"match_id":"m1","prediction":"Draw","odds":18000}]}`
	rr := do(t, h, http.MethodPost, "/v1/quotes/betslip", parlay)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var q map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &q))
	assert.Equal(t, 36_000.0, q["combined_odds"])
	assert.Equal(t, "3.6", q["combined_multiplier"])
	assert.Equal(t, "1.05", q["parlay_boost"])
	assert.Equal(t, 362.0, q["potential_payout"])
	assert.Equal(t, 2.0, q["season_pool_share"])
	allocs := q["allocations"].([]any)
	require.Len(t, allocs, 2)
	assert.Equal(t, 94.0, allocs[0].(map[string]any)["allocation"])
	assert.Equal(t, 105.0, allocs[1].(map[string]any)["allocation"])

	system := `{"bet_type":"SystemBet","stake":10000,"bets":[
		{"match_id":"m0","prediction":"HomeWin","odds":20000},
		{"match_id":"m1","prediction":"AwayWin","odds":18000}]}`
	rr = do(t, h, http.MethodPost, "/v1/quotes/betslip", system)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &q))
	assert.Equal(t, 5_000.0, q["stake_per_bet"])
	assert.Equal(t, 18_240.0, q["potential_payout"])
}

func TestQuoteBetslip_Rejects(t *testing.T) {
	a, _, _ := newAPI()
	h := a.Router()
	leg := `{"match_id":"m0","prediction":"HomeWin","odds":20000}`

	for name, body := range map[string]string{
		"unknown kind":    `{"bet_type":"Accumulator","stake":100,"bets":[` + leg + `]}`,
		"no legs":         `{"bet_type":"Parlay","stake":100,"bets":[]}`,
		"missing kind":    `{"stake":1000,"bets":[` + leg + `,` + leg + `]}`,
		"parlay one leg":  `{"bet_type":"Parlay","stake":100,"bets":[` + leg + `]}`,
		"system one leg":  `{"bet_type":"SystemBet","stake":100,"bets":[` + leg + `]}`,
		"single two legs": `{"bet_type":"Single","stake":100,"bets":[` + leg + `,` + leg + `]}`,
		"stake too low":   `{"bet_type":"Single","stake":99,"bets":[` + leg + `]}`,
		"pending leg":     `{"bet_type":"Single","stake":100,"bets":[{"match_id":"m0","prediction":"Pending","odds":20000}]}`,
		"odds too high":   `{"bet_type":"Single","stake":100,"bets":[{"match_id":"m0","prediction":"Draw","odds":100001}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/v1/quotes/betslip", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestQuoteOddsLock(t *testing.T) {
	a, _, _ := newAPI()
	h := a.Router()

	rr := do(t, h, http.MethodPost, "/v1/quotes/odds-lock", `{"home_seed":500,"away_seed":300,"draw_seed":200}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"home_odds":12878,"away_odds":15400,"draw_odds":18554,"locked":true,
		"home":"1.2878","away":"1.54","draw":"1.8554"}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/v1/quotes/odds-lock", `{"home_seed":0,"away_seed":300,"draw_seed":200}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMatchOutcome(t *testing.T) {
	a, _, _ := newAPI()
	h := a.Router()

	rr := do(t, h, http.MethodGet, "/v1/matches/outcome?seed=block-hash&index=3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	first := rr.Body.String()
	rr = do(t, h, http.MethodGet, "/v1/matches/outcome?seed=block-hash&index=3", "")
	assert.Equal(t, first, rr.Body.String(), "outcome is deterministic")

	var out struct {
		Result     assets.MatchResult `json:"result"`
		HomePoints uint32             `json:"home_points"`
		AwayPoints uint32             `json:"away_points"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Result.Resolved())
	assert.Contains(t, []uint32{2, 3}, out.HomePoints+out.AwayPoints)

	for _, path := range []string{
		"/v1/matches/outcome?index=1",
		"/v1/matches/outcome?seed=x&index=10",
		"/v1/matches/outcome?seed=x&index=-1",
	} {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, path, "").Code, path)
	}
}

func TestLPQuotes(t *testing.T) {
	a, _, _ := newAPI()
	h := a.Router()

	rr := do(t, h, http.MethodPost, "/v1/quotes/lp/deposit", `{"amount":500,"total_shares":1000,"total_liquidity":2000}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"shares":250}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/v1/quotes/lp/deposit", `{"amount":0,"total_shares":1000,"total_liquidity":2000}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/quotes/lp/withdraw", `{"shares":1000,"total_shares":3000,"total_liquidity":6000}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"gross":2000,"fee":10,"net":1990}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/v1/quotes/lp/withdraw", `{"shares":2001,"total_shares":3000,"total_liquidity":6000}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	a, _, _ := newAPI()
	req := httptest.NewRequest(http.MethodOptions, "/v1/quotes/betslip", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
