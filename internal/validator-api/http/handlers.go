package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/internal/validator-api/dto"
	"github.com/radieske/league-ledger-validator/internal/validator-api/repo"
)

// validateTransition valida uma transição na hora, sem persistir nem publicar.
// ?policy=reject|exclude sobrescreve a política padrão do serviço.
func (a *API) validateTransition(w http.ResponseWriter, r *http.Request) {
	policy := a.Policy
	if q := r.URL.Query().Get("policy"); q != "" {
		p, err := validator.ParsePolicy(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		policy = p
	}

	var req dto.ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := a.now()
	v := validator.NewDispatcher(policy).Validate(req.Transaction, req.Witness)
	if a.Metrics != nil {
		a.Metrics.ObserveVerdict(v, a.now().Sub(start))
	}

	id := uuid.NewString()
	if a.NewID != nil {
		id = a.NewID()
	}
	writeJSON(w, http.StatusOK, v.Event(id, req.Transaction.ID, policy, a.now()))
}

// getVerdict retorna o veredito de uma transição, preferencialmente do cache
func (a *API) getVerdict(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txId")

	if v, ok, err := a.Cache.GetVerdict(r.Context(), txID); err != nil {
		a.Log.Warn("verdict cache get failed", zap.Error(err))
	} else if ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	v, err := a.ReadRepo.GetVerdict(r.Context(), txID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := a.Cache.SetVerdict(r.Context(), *v); err != nil {
		a.Log.Warn("verdict cache set failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, v)
}

// topRejections lista as regras mais violadas (?limit=, padrão 10, máximo 100)
func (a *API) topRejections(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be in [1,100], got %q", q))
			return
		}
		limit = n
	}
	out, err := a.ReadRepo.TopRejections(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if out == nil {
		out = []repo.RuleCount{}
	}
	writeJSON(w, http.StatusOK, out)
}

// quoteBetslip calcula odds combinadas, alocações e payout potencial de um betslip
func (a *API) quoteBetslip(w http.ResponseWriter, r *http.Request) {
	var req dto.BetslipQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := checkQuote(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	combined := payout.CombinedOdds(req.Bets)
	mult := payout.ParlayMultiplier(len(req.Bets))
	q := dto.BetslipQuote{
		BetType:            req.BetType,
		CombinedOdds:       combined,
		CombinedMultiplier: dto.Multiplier(combined),
		ParlayMultiplier:   mult,
		ParlayBoost:        dto.Multiplier(mult),
		StakePerBet:        req.Stake,
		PotentialPayout:    payout.PotentialPayout(req.BetType, req.Stake, req.Bets, req.Badges),
		SeasonPoolShare:    payout.SeasonPoolShare(req.Stake),
	}
	switch req.BetType {
	case assets.Parlay:
		q.Allocations = payout.WeightedAllocations(req.Stake, req.Bets, mult)
	case assets.SystemBet:
		q.StakePerBet = req.Stake / uint64(len(req.Bets))
	}
	writeJSON(w, http.StatusOK, q)
}

func checkQuote(req dto.BetslipQuoteRequest) error {
	n := len(req.Bets)
	switch {
	case n == 0:
		return errors.New("at least one bet is required")
	case n > assets.MaxBetsPerSlip:
		return fmt.Errorf("at most %d bets per slip, got %d", assets.MaxBetsPerSlip, n)
	}
	switch req.BetType {
	case assets.Single:
		if n != 1 {
			return fmt.Errorf("single bet takes exactly one leg, got %d", n)
		}
	case assets.Parlay, assets.SystemBet:
		if n < 2 {
			return fmt.Errorf("%s takes at least two legs, got %d", req.BetType, n)
		}
	default:
		return fmt.Errorf("bet_type must be Single, Parlay or SystemBet, got %q", req.BetType)
	}
	if req.Stake < assets.MinBet || req.Stake > assets.MaxBet {
		return fmt.Errorf("stake must be in [%d,%d], got %d", assets.MinBet, assets.MaxBet, req.Stake)
	}
	for i, b := range req.Bets {
		if b.Prediction == assets.Pending {
			return fmt.Errorf("bet %d: prediction must be a final result", i)
		}
		if b.Odds < assets.MinOdds || b.Odds > assets.MaxOdds {
			return fmt.Errorf("bet %d: odds must be in [%d,%d], got %d", i, assets.MinOdds, assets.MaxOdds, b.Odds)
		}
	}
	return nil
}

// quoteOddsLock trava odds a partir dos volumes iniciais (seeds) de cada resultado
func (a *API) quoteOddsLock(w http.ResponseWriter, r *http.Request) {
	var req dto.OddsLockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lo, err := payout.LockOdds(req.HomeSeed, req.AwaySeed, req.DrawSeed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OddsLock{
		LockedOdds: lo,
		Home:       dto.Multiplier(lo.HomeOdds),
		Away:       dto.Multiplier(lo.AwayOdds),
		Draw:       dto.Multiplier(lo.DrawOdds),
	})
}

// matchOutcome reproduz o resultado determinístico de uma partida (?seed=&index=)
func (a *API) matchOutcome(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("seed")
	if seed == "" {
		writeError(w, http.StatusBadRequest, errors.New("seed is required"))
		return
	}
	idx, err := strconv.ParseUint(r.URL.Query().Get("index"), 10, 8)
	if err != nil || idx >= assets.MatchesPerTurn {
		writeError(w, http.StatusBadRequest, fmt.Errorf("index must be in [0,%d)", assets.MatchesPerTurn))
		return
	}
	res := payout.GenerateOutcome(seed, uint8(idx))
	writeJSON(w, http.StatusOK, dto.Outcome{
		Seed:       seed,
		MatchIndex: uint8(idx),
		Result:     res,
		HomePoints: payout.Points(res, true),
		AwayPoints: payout.Points(res, false),
	})
}

func (a *API) quoteDeposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	shares, err := payout.SharesForDeposit(req.Amount, req.TotalShares, req.TotalLiquidity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DepositQuote{Shares: shares})
}

func (a *API) quoteWithdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawQuoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q, err := payout.WithdrawalQuote(req.Shares, req.TotalShares, req.TotalLiquidity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WithdrawQuote{Gross: q.Gross, Fee: q.Fee, Net: q.Net})
}
