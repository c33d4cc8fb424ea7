package dto

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

// Multiplier converte basis points em multiplicador de exibição (19200 -> "1.92").
// Só para resposta: os cálculos continuam inteiros no payout.
func Multiplier(bps uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(bps), -4)
}

// ValidateRequest é a transição enviada para validação síncrona
type ValidateRequest struct {
	Transaction ledger.Transaction `json:"transaction"`
	Witness     string             `json:"witness,omitempty"`
}

// BetslipQuoteRequest representa um betslip ainda não montado
type BetslipQuoteRequest struct {
	BetType assets.BetKind     `json:"bet_type"`
	Stake   uint64             `json:"stake"`
	Bets    []assets.SingleBet `json:"bets"`
	Badges  []assets.TeamID    `json:"badges"`
}

type BetslipQuote struct {
	BetType            assets.BetKind         `json:"bet_type"`
	CombinedOdds       uint64                 `json:"combined_odds"`
	CombinedMultiplier decimal.Decimal        `json:"combined_multiplier"`
	ParlayMultiplier   uint64                 `json:"parlay_multiplier"`
	ParlayBoost        decimal.Decimal        `json:"parlay_boost"`
	StakePerBet        uint64                 `json:"stake_per_bet"`
	Allocations        []assets.BetAllocation `json:"allocations,omitempty"`
	PotentialPayout    uint64                 `json:"potential_payout"`
	SeasonPoolShare    uint64                 `json:"season_pool_share"`
}

type OddsLockRequest struct {
	HomeSeed uint64 `json:"home_seed"`
	AwaySeed uint64 `json:"away_seed"`
	DrawSeed uint64 `json:"draw_seed"`
}

type OddsLock struct {
	assets.LockedOdds
	Home decimal.Decimal `json:"home"`
	Away decimal.Decimal `json:"away"`
	Draw decimal.Decimal `json:"draw"`
}

type Outcome struct {
	Seed       string             `json:"seed"`
	MatchIndex uint8              `json:"match_id"`
	Result     assets.MatchResult `json:"result"`
	HomePoints uint32             `json:"home_points"`
	AwayPoints uint32             `json:"away_points"`
}

// PoolState é o recorte do pool necessário para as cotações de LP
type PoolState struct {
	TotalShares    uint64 `json:"total_shares"`
	TotalLiquidity uint64 `json:"total_liquidity"`
}

type DepositQuoteRequest struct {
	PoolState
	Amount uint64 `json:"amount"`
}

type DepositQuote struct {
	Shares uint64 `json:"shares"`
}

type WithdrawQuoteRequest struct {
	PoolState
	Shares uint64 `json:"shares"`
}

type WithdrawQuote struct {
	Gross uint64 `json:"gross"`
	Fee   uint64 `json:"fee"`
	Net   uint64 `json:"net"`
}
