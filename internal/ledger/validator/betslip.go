package validator

import (
	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
)

// validateBetslip: sem entradas é colocação; com entradas é liquidação.
func validateBetslip(b batch) error {
	ins, outs, err := decodeSides[assets.Betslip](b)
	if err != nil {
		return err
	}
	if len(ins) == 0 {
		for i := range outs {
			if err := checkPlacement(b, i, &outs[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range ins {
		if ins[i].Settled {
			return reject(b.kind, "betslip.settlement.already_settled", "input %d (%s)", i, ins[i].SlipID)
		}
	}
	for i := range outs {
		s := &outs[i]
		if !s.Settled {
			return reject(b.kind, "betslip.settlement.not_settled", "output %d (%s)", i, s.SlipID)
		}
		// teto de sanidade; o valor exato é calculado fora do validador
		if s.PayoutAmount > payout.SatMul(s.PotentialPayout, 2) {
			return reject(b.kind, "betslip.settlement.payout_ceiling", "output %d pays %d, potential %d", i, s.PayoutAmount, s.PotentialPayout)
		}
	}
	return nil
}


func checkPlacement(b batch, i int, s *assets.Betslip) error {
	n := len(s.Bets)
	switch {
	case s.Settled:
		return reject(b.kind, "betslip.placement.settled", "output %d", i)
	case s.PayoutAmount != 0:
		return reject(b.kind, "betslip.placement.payout", "output %d already carries payout %d", i, s.PayoutAmount)
	case s.TotalStake < assets.MinBet:
		return reject(b.kind, "betslip.placement.min_stake", "output %d stake %d < %d", i, s.TotalStake, assets.MinBet)
	case n == 0 || n > assets.MaxBetsPerSlip:
		return reject(b.kind, "betslip.placement.legs", "output %d has %d legs", i, n)
	}

	switch s.BetType {
	case assets.Single:
		if n != 1 || s.StakePerBet != s.TotalStake {
			return reject(b.kind, "betslip.placement.single", "output %d: %d legs, stake per bet %d, total %d", i, n, s.StakePerBet, s.TotalStake)
		}
	case assets.Parlay:
		if n < 2 {
			return reject(b.kind, "betslip.placement.parlay", "output %d: parlay needs 2+ legs", i)
		}
		if s.PotentialPayout <= s.TotalStake {
			return reject(b.kind, "betslip.placement.parlay", "output %d: potential %d not above stake %d", i, s.PotentialPayout, s.TotalStake)
		}
		if c := payout.CombinedOdds(s.Bets); c <= payout.BpsScale {
			return reject(b.kind, "betslip.placement.parlay", "output %d: combined odds %d", i, c)
		}
		if s.LockedMultiplier != 0 && s.LockedMultiplier != payout.ParlayMultiplier(n) {
			return reject(b.kind, "betslip.placement.multiplier", "output %d: multiplier %d for %d legs", i, s.LockedMultiplier, n)
		}
	case assets.SystemBet:
		if n < 2 {
			return reject(b.kind, "betslip.placement.system", "output %d: system bet needs 2+ legs", i)
		}
		if payout.SatMul(s.StakePerBet, uint64(n)) > s.TotalStake {
			return reject(b.kind, "betslip.placement.system", "output %d: %d x %d exceeds stake %d", i, s.StakePerBet, n, s.TotalStake)
		}
	default:
		return reject(b.kind, "betslip.placement.kind", "output %d: bet type %q", i, s.BetType)
	}

	if s.LockedMultiplier > payout.MaxParlayMultiplier {
		return reject(b.kind, "betslip.placement.multiplier", "output %d: multiplier %d above cap", i, s.LockedMultiplier)
	}
	for j, leg := range s.Bets {
		if !leg.Prediction.Resolved() {
			return reject(b.kind, "betslip.placement.prediction", "output %d leg %d predicts %q", i, j, leg.Prediction)
		}
		if !oddsInRange(leg.Odds) {
			return reject(b.kind, "betslip.placement.odds_range", "output %d leg %d odds %d", i, j, leg.Odds)
		}
	}
	for _, id := range s.Badges {
		if !id.Valid() {
			return reject(b.kind, "betslip.placement.badge", "output %d badge team %d", i, id)
		}
	}
	if len(s.Allocations) > 0 {
		if len(s.Allocations) != n {
			return reject(b.kind, "betslip.placement.allocations", "output %d: %d allocations for %d legs", i, len(s.Allocations), n)
		}
		for j, a := range s.Allocations {
			if a.MatchID != s.Bets[j].MatchID {
				return reject(b.kind, "betslip.placement.allocations", "output %d allocation %d is for %q, leg is %q", i, j, a.MatchID, s.Bets[j].MatchID)
			}
		}
	}
	return nil
}
