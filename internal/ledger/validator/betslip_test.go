package validator

import (
	"testing"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

func newParlay() assets.Betslip {
	bets := []assets.SingleBet{
		{MatchID: "s1:1:0", Prediction: assets.HomeWin, Odds: 20_000},
		{MatchID: "s1:1:1", Prediction: assets.Draw, Odds: 18_000},
	}
	return assets.Betslip{
		SlipID:           "slip-1",
		Bettor:           "addr-1",
		BetType:          assets.Parlay,
		Bets:             bets,
		TotalStake:       10_000,
		StakePerBet:      10_000,
		PotentialPayout:  payout.PotentialPayout(assets.Parlay, 10_000, bets, nil),
		LockedMultiplier: payout.ParlayMultiplier(2),
		Allocations:      payout.WeightedAllocations(10_000, bets, payout.ParlayMultiplier(2)),
	}
}

func newSingle() assets.Betslip {
	return assets.Betslip{
		SlipID:          "slip-2",
		Bettor:          "addr-2",
		BetType:         assets.Single,
		Bets:            []assets.SingleBet{{MatchID: "s1:1:0", Prediction: assets.AwayWin, Odds: 35_000}},
		TotalStake:      500,
		StakePerBet:     500,
		PotentialPayout: 1_680,
		Badges:          []assets.TeamID{5},
	}
}

func newSystem() assets.Betslip {
	return assets.Betslip{
		SlipID:  "slip-3",
		Bettor:  "addr-3",
		BetType: assets.SystemBet,
		Bets: []assets.SingleBet{
			{MatchID: "s1:1:0", Prediction: assets.HomeWin, Odds: 20_000},
			{MatchID: "s1:1:1", Prediction: assets.Draw, Odds: 18_000},
			{MatchID: "s1:1:2", Prediction: assets.AwayWin, Odds: 32_000},
		},
		TotalStake:      15_000,
		StakePerBet:     5_000,
		PotentialPayout: 33_600,
	}
}

func TestBetslipPlacement(t *testing.T) {
	tests := []struct {
		name  string
		build func() assets.Betslip
		rule  string
	}{
		{"parlay", newParlay, ""},
		{"single", newSingle, ""},
		{"system", newSystem, ""},
		{"settled", func() assets.Betslip { s := newSingle(); s.Settled = true; return s }, "betslip.placement.settled"},
		{"payout set", func() assets.Betslip { s := newSingle(); s.PayoutAmount = 1; return s }, "betslip.placement.payout"},
		{"stake below min", func() assets.Betslip { s := newSingle(); s.TotalStake, s.StakePerBet = 99, 99; return s }, "betslip.placement.min_stake"},
		{"no legs", func() assets.Betslip { s := newSingle(); s.Bets = nil; return s }, "betslip.placement.legs"},
		{"too many legs", func() assets.Betslip {
			s := newSystem()
			for len(s.Bets) <= assets.MaxBetsPerSlip {
				s.Bets = append(s.Bets, s.Bets[0])
			}
			s.StakePerBet = 1
			return s
		}, "betslip.placement.legs"},
		{"single with two legs", func() assets.Betslip {
			s := newSingle()
			s.Bets = append(s.Bets, s.Bets[0])
			return s
		}, "betslip.placement.single"},
		{"single stake split", func() assets.Betslip { s := newSingle(); s.StakePerBet = 250; return s }, "betslip.placement.single"},
		{"parlay one leg", func() assets.Betslip { s := newParlay(); s.Bets = s.Bets[:1]; s.Allocations = nil; return s }, "betslip.placement.parlay"},
		{"parlay payout not above stake", func() assets.Betslip { s := newParlay(); s.PotentialPayout = s.TotalStake; return s }, "betslip.placement.parlay"},
		{"parlay combined odds flat", func() assets.Betslip {
			s := newParlay()
			s.Bets[0].Odds, s.Bets[1].Odds = 10_000, 10_000
			return s
		}, "betslip.placement.parlay"},
		{"parlay wrong multiplier", func() assets.Betslip { s := newParlay(); s.LockedMultiplier = 11_000; return s }, "betslip.placement.multiplier"},
		{"multiplier above cap", func() assets.Betslip { s := newSingle(); s.LockedMultiplier = 12_501; return s }, "betslip.placement.multiplier"},
		{"system overspends", func() assets.Betslip { s := newSystem(); s.StakePerBet = 5_001; return s }, "betslip.placement.system"},
		{"system overflow saturates", func() assets.Betslip { s := newSystem(); s.StakePerBet = 1 << 63; return s }, "betslip.placement.system"},
		{"empty kind does not decode", func() assets.Betslip { s := newSingle(); s.BetType = ""; return s }, RuleMalformed},
		{"pending prediction", func() assets.Betslip { s := newSystem(); s.Bets[2].Prediction = assets.Pending; return s }, "betslip.placement.prediction"},
		{"leg odds out of range", func() assets.Betslip { s := newSystem(); s.Bets[1].Odds = 200_000; return s }, "betslip.placement.odds_range"},
		{"badge outside roster", func() assets.Betslip { s := newSingle(); s.Badges = []assets.TeamID{20}; return s }, "betslip.placement.badge"},
		{"allocation count", func() assets.Betslip { s := newParlay(); s.Allocations = s.Allocations[:1]; return s }, "betslip.placement.allocations"},
		{"allocation order", func() assets.Betslip {
			s := newParlay()
			s.Allocations[0], s.Allocations[1] = s.Allocations[1], s.Allocations[0]
			return s
		}, "betslip.placement.allocations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validate(ledger.Transaction{Outputs: []ledger.Record{rec(t, ledger.KindBetslip, tt.build())}})
			if tt.rule == "" {
				requireAccepted(t, v)
				return
			}
			requireRule(t, v, tt.rule)
		})
	}
}

func TestBetslipSettlement(t *testing.T) {
	open := newParlay()
	settled := open
	settled.Settled = true
	settled.PayoutAmount = payout.BetslipPayout(open, []payout.Result{
		{MatchID: "s1:1:0", Outcome: assets.HomeWin},
		{MatchID: "s1:1:1", Outcome: assets.Draw},
	})

	t.Run("winning slip", func(t *testing.T) {
		v := validate(ledger.Transaction{
			Inputs:  spend(rec(t, ledger.KindBetslip, open)),
			Outputs: []ledger.Record{rec(t, ledger.KindBetslip, settled)},
		})
		requireAccepted(t, v)
	})
	t.Run("slip burned", func(t *testing.T) {
		requireAccepted(t, validate(ledger.Transaction{Inputs: spend(rec(t, ledger.KindBetslip, open))}))
	})
	t.Run("input already settled", func(t *testing.T) {
		v := validate(ledger.Transaction{
			Inputs:  spend(rec(t, ledger.KindBetslip, settled)),
			Outputs: []ledger.Record{rec(t, ledger.KindBetslip, settled)},
		})
		requireRule(t, v, "betslip.settlement.already_settled")
	})
	t.Run("output not settled", func(t *testing.T) {
		v := validate(ledger.Transaction{
			Inputs:  spend(rec(t, ledger.KindBetslip, open)),
			Outputs: []ledger.Record{rec(t, ledger.KindBetslip, open)},
		})
		requireRule(t, v, "betslip.settlement.not_settled")
	})
	t.Run("payout above ceiling", func(t *testing.T) {
		greedy := settled
		greedy.PayoutAmount = 2*greedy.PotentialPayout + 1
		v := validate(ledger.Transaction{
			Inputs:  spend(rec(t, ledger.KindBetslip, open)),
			Outputs: []ledger.Record{rec(t, ledger.KindBetslip, greedy)},
		})
		requireRule(t, v, "betslip.settlement.payout_ceiling")
	})
}

func TestLegacyBet(t *testing.T) {
	bet := assets.LegacyBet{MatchID: "s1:1:0", Prediction: assets.HomeWin, Stake: 1_000, Odds: 20_000, Bettor: "addr"}

	requireAccepted(t, validate(ledger.Transaction{Outputs: []ledger.Record{rec(t, ledger.KindLegacyBet, bet)}}))

	high := bet
	high.Stake = assets.MaxBet + 1
	requireRule(t, validate(ledger.Transaction{Outputs: []ledger.Record{rec(t, ledger.KindLegacyBet, high)}}), "legacy_bet.placement.stake")

	pending := bet
	pending.Prediction = assets.Pending
	requireRule(t, validate(ledger.Transaction{Outputs: []ledger.Record{rec(t, ledger.KindLegacyBet, pending)}}), "legacy_bet.placement.prediction")

	settled := bet
	settled.Settled = true
	requireRule(t, validate(ledger.Transaction{Outputs: []ledger.Record{rec(t, ledger.KindLegacyBet, settled)}}), "legacy_bet.placement.settled")

	// liquidação: só exige entrada aberta
	requireAccepted(t, validate(ledger.Transaction{Inputs: spend(rec(t, ledger.KindLegacyBet, bet))}))
	requireRule(t, validate(ledger.Transaction{Inputs: spend(rec(t, ledger.KindLegacyBet, settled))}), "legacy_bet.settlement.already_settled")
}
