package assets

import (
	"encoding/json"
	"fmt"
)

// MatchResult é o resultado de uma partida.
type MatchResult string

const (
	Pending MatchResult = "Pending"
	HomeWin MatchResult = "HomeWin"
	AwayWin MatchResult = "AwayWin"
	Draw    MatchResult = "Draw"
)

// Resolved informa se o resultado é final (qualquer valor exceto Pending).
func (r MatchResult) Resolved() bool { return r == HomeWin || r == AwayWin || r == Draw }

func (r *MatchResult) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch v := MatchResult(s); v {
	case Pending, HomeWin, AwayWin, Draw:
		*r = v
		return nil
	default:
		return fmt.Errorf("unknown match result %q", s)
	}
}

// BetKind é o formato do betslip.
type BetKind string

const (
	Single    BetKind = "Single"    // uma partida
	Parlay    BetKind = "Parlay"    // várias partidas, todas precisam ganhar
	SystemBet BetKind = "SystemBet" // várias partidas, cada perna paga sozinha
)

func (k *BetKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch v := BetKind(s); v {
	case Single, Parlay, SystemBet:
		*k = v
		return nil
	default:
		return fmt.Errorf("unknown bet kind %q", s)
	}
}

// LockedOdds são as odds comprimidas travadas na partida.
type LockedOdds struct {
	HomeOdds uint64 `json:"home_odds"`
	AwayOdds uint64 `json:"away_odds"`
	DrawOdds uint64 `json:"draw_odds"`
	Locked   bool   `json:"locked"`
}

type Match struct {
	SeasonID      string      `json:"season_id"`
	Turn          uint32      `json:"turn"`
	MatchIndex    uint8       `json:"match_id"` // 0..9 dentro do turno
	HomeTeam      string      `json:"home_team"`
	AwayTeam      string      `json:"away_team"`
	HomeOdds      uint64      `json:"home_odds"`
	AwayOdds      uint64      `json:"away_odds"`
	DrawOdds      uint64      `json:"draw_odds"`
	LockedOdds    *LockedOdds `json:"locked_odds,omitempty"`
	Result        MatchResult `json:"result"`
	RandomSeed    *string     `json:"random_seed,omitempty"`
	TotalHomeBets uint64      `json:"total_home_bets"`
	TotalAwayBets uint64      `json:"total_away_bets"`
	TotalDrawBets uint64      `json:"total_draw_bets"`
}

// SingleBet é uma perna de um betslip.
type SingleBet struct {
	MatchID    string      `json:"match_id"`
	Prediction MatchResult `json:"prediction"`
	Odds       uint64      `json:"odds"` // odds no momento da aposta
}

// BetAllocation é a parte do stake alocada a uma perna (odds-weighted).
type BetAllocation struct {
	MatchID    string `json:"match_id"`
	Allocation uint64 `json:"allocation"`
}

type Betslip struct {
	SlipID           string          `json:"slip_id"`
	Bettor           string          `json:"bettor"`
	BetType          BetKind         `json:"bet_type"`
	Bets             []SingleBet     `json:"bets"`
	TotalStake       uint64          `json:"total_stake"`
	StakePerBet      uint64          `json:"stake_per_bet"`
	PotentialPayout  uint64          `json:"potential_payout"`
	Badges           []TeamID        `json:"badges"`
	Settled          bool            `json:"settled"`
	PayoutAmount     uint64          `json:"payout_amount"`
	Timestamp        uint64          `json:"timestamp"`
	Allocations      []BetAllocation `json:"allocations,omitempty"`
	LockedMultiplier uint64          `json:"locked_multiplier,omitempty"`
}

// LegacyBet é a aposta simples anterior ao betslip (mantida para posições antigas).
type LegacyBet struct {
	MatchID    string      `json:"match_id"`
	Prediction MatchResult `json:"prediction"`
	Stake      uint64      `json:"stake"`
	Odds       uint64      `json:"odds"`
	Bettor     string      `json:"bettor"`
	HasBadge   bool        `json:"has_badge"`
	Settled    bool        `json:"settled"`
}

type Badge struct {
	TeamName           string `json:"team_name"`
	TeamID             TeamID `json:"team_id"`
	BonusBps           uint64 `json:"bonus_bps"`
	Owner              string `json:"owner"`
	TotalBetsWithBonus uint64 `json:"total_bets_with_bonus"`
}

type Season struct {
	SeasonID           string            `json:"season_id"`
	CurrentTurn        uint32            `json:"current_turn"`
	TeamScores         map[TeamID]uint32 `json:"team_scores"` // ausente = 0 pontos
	TotalBetsCollected uint64            `json:"total_bets_collected"`
	SeasonPool         uint64            `json:"season_pool"`
	IsFinished         bool              `json:"is_finished"`
	WinnerTeamID       *TeamID           `json:"winner_team_id,omitempty"`
}

// Score retorna a pontuação do time (0 quando ausente do mapa).
func (s *Season) Score(id TeamID) uint32 { return s.TeamScores[id] }

// Leader retorna o menor TeamID que atinge a pontuação máxima e a pontuação.
func (s *Season) Leader() (TeamID, uint32) {
	var best TeamID
	var max uint32
	for id := TeamID(0); id < RosterSize; id++ {
		if sc := s.TeamScores[id]; sc > max {
			best, max = id, sc
		}
	}
	return best, max
}

type LiquidityPool struct {
	PoolID          string `json:"pool_id"`
	TotalLiquidity  uint64 `json:"total_liquidity"`
	TotalShares     uint64 `json:"total_shares"`
	TotalBetsInPlay uint64 `json:"total_bets_in_play"`
	TotalPaidOut    uint64 `json:"total_paid_out"`
	TotalCollected  uint64 `json:"total_collected"`
	ProtocolRevenue uint64 `json:"protocol_revenue"`
	HouseBalance    uint64 `json:"house_balance"`
	IsActive        bool   `json:"is_active"`
	MinLiquidity    uint64 `json:"min_liquidity"`
}

type LPShare struct {
	ShareID          string `json:"share_id"`
	LPAddress        string `json:"lp_address"`
	Shares           uint64 `json:"shares"`
	InitialDeposit   uint64 `json:"initial_deposit"`
	TotalWithdrawn   uint64 `json:"total_withdrawn"`
	DepositTimestamp uint64 `json:"deposit_timestamp"`
}

type House struct {
	TotalLeagueSupply uint64 `json:"total_league_supply"`
	AirdropRemaining  uint64 `json:"airdrop_remaining"`
	ProtocolAddress   string `json:"protocol_address"`
}

// TokenAmount é o payload do token fungível LEAGUE.
type TokenAmount uint64
