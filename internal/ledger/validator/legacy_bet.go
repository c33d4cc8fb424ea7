package validator

import "github.com/radieske/league-ledger-validator/internal/ledger/assets"

// validateLegacyBet mantém as regras de antes do betslip, só para posições antigas.
func validateLegacyBet(b batch) error {
	ins, outs, err := decodeSides[assets.LegacyBet](b)
	if err != nil {
		return err
	}
	if len(ins) > 0 {
		for i, bet := range ins {
			if bet.Settled {
				return reject(b.kind, "legacy_bet.settlement.already_settled", "input %d", i)
			}
		}
		return nil
	}
	for i, bet := range outs {
		switch {
		case bet.Settled:
			return reject(b.kind, "legacy_bet.placement.settled", "output %d", i)
		case bet.Stake < assets.MinBet || bet.Stake > assets.MaxBet:
			return reject(b.kind, "legacy_bet.placement.stake", "output %d stake %d", i, bet.Stake)
		case !bet.Prediction.Resolved():
			return reject(b.kind, "legacy_bet.placement.prediction", "output %d predicts %q", i, bet.Prediction)
		}
	}
	return nil
}
