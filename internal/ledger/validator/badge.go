package validator

import "github.com/radieske/league-ledger-validator/internal/ledger/assets"

func validateBadge(b batch) error {
	ins, outs, err := decodeSides[assets.Badge](b)
	if err != nil {
		return err
	}
	for i, badge := range outs {
		name, ok := assets.TeamName(badge.TeamID)
		if !ok {
			return reject(b.kind, "badge.team_id", "output %d team id %d", i, badge.TeamID)
		}
		if badge.TeamName != name {
			return reject(b.kind, "badge.team_name", "output %d named %q, roster says %q", i, badge.TeamName, name)
		}
		if badge.BonusBps == 0 || badge.BonusBps > assets.MaxBadgeBonusBps {
			return reject(b.kind, "badge.bonus", "output %d bonus %d bps", i, badge.BonusBps)
		}
	}

	// troca: dono pode mudar, time não; pares por posição
	for i := 0; i < len(ins) && i < len(outs); i++ {
		in, out := ins[i], outs[i]
		if in.TeamID != out.TeamID || in.TeamName != out.TeamName {
			return reject(b.kind, "badge.trade.team", "pair %d changed team", i)
		}
		if out.TotalBetsWithBonus < in.TotalBetsWithBonus {
			return reject(b.kind, "badge.trade.usage", "pair %d usage %d -> %d", i, in.TotalBetsWithBonus, out.TotalBetsWithBonus)
		}
	}
	return nil
}
