package validator

import (
	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
)

// validateMatch aceita criação (só saídas) ou resolução (pares entrada/saída).
// Qualquer outro formato rejeita.
func validateMatch(b batch) error {
	ins, outs, err := decodeSides[assets.Match](b)
	if err != nil {
		return err
	}
	switch {
	case len(ins) == 0 && len(outs) == 0:
		return nil
	case len(ins) == 0:
		for i := range outs {
			if err := checkMatchCreation(b, i, &outs[i]); err != nil {
				return err
			}
		}
		return nil
	case len(outs) == 0:
		return reject(b.kind, RuleShape, "%d matches consumed without outputs", len(ins))
	case len(ins) != len(outs):
		return reject(b.kind, RuleShape, "resolution pairs mismatch: %d inputs, %d outputs", len(ins), len(outs))
	}
	for i := range ins {
		if err := checkMatchResolution(b, i, &ins[i], &outs[i]); err != nil {
			return err
		}
	}
	return nil
}

func oddsInRange(o uint64) bool { return o >= assets.MinOdds && o <= assets.MaxOdds }

func checkMatchCreation(b batch, i int, m *assets.Match) error {
	if m.Result != assets.Pending {
		return reject(b.kind, "match.creation.not_pending", "output %d result %s", i, m.Result)
	}
	if _, ok := assets.LookupTeam(m.HomeTeam); !ok {
		return reject(b.kind, "match.creation.unknown_team", "output %d home team %q", i, m.HomeTeam)
	}
	if _, ok := assets.LookupTeam(m.AwayTeam); !ok {
		return reject(b.kind, "match.creation.unknown_team", "output %d away team %q", i, m.AwayTeam)
	}
	if m.HomeTeam == m.AwayTeam {
		return reject(b.kind, "match.creation.same_team", "output %d %q plays itself", i, m.HomeTeam)
	}
	if m.Turn > assets.TurnsPerSeason || m.MatchIndex >= assets.MatchesPerTurn {
		return reject(b.kind, "match.creation.schedule", "output %d turn %d index %d", i, m.Turn, m.MatchIndex)
	}
	if m.TotalHomeBets != 0 || m.TotalAwayBets != 0 || m.TotalDrawBets != 0 {
		return reject(b.kind, "match.creation.volume", "output %d starts with non-zero volume", i)
	}
	if !oddsInRange(m.HomeOdds) || !oddsInRange(m.AwayOdds) || !oddsInRange(m.DrawOdds) {
		return reject(b.kind, "match.creation.odds_range", "output %d odds %d/%d/%d", i, m.HomeOdds, m.AwayOdds, m.DrawOdds)
	}
	if lo := m.LockedOdds; lo != nil {
		if !lo.Locked {
			return reject(b.kind, "match.creation.locked_odds", "output %d locked odds not locked", i)
		}
		for _, o := range []uint64{lo.HomeOdds, lo.AwayOdds, lo.DrawOdds} {
			if o < payout.LockedOddsMin || o > payout.LockedOddsMax {
				return reject(b.kind, "match.creation.locked_odds", "output %d locked odds %d outside band", i, o)
			}
		}
	}
	return nil
}

func sameLockedOdds(a, b *assets.LockedOdds) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func checkMatchResolution(b batch, i int, in, out *assets.Match) error {
	if in.Result != assets.Pending {
		return reject(b.kind, "match.resolution.already_resolved", "input %d result %s", i, in.Result)
	}
	if !out.Result.Resolved() {
		return reject(b.kind, "match.resolution.unresolved", "output %d result %s", i, out.Result)
	}
	if in.SeasonID != out.SeasonID || in.Turn != out.Turn || in.MatchIndex != out.MatchIndex {
		return reject(b.kind, "match.resolution.identity", "pair %d changed season/turn/index", i)
	}
	if in.HomeTeam != out.HomeTeam || in.AwayTeam != out.AwayTeam {
		return reject(b.kind, "match.resolution.teams", "pair %d changed teams", i)
	}
	if in.HomeOdds != out.HomeOdds || in.AwayOdds != out.AwayOdds || in.DrawOdds != out.DrawOdds ||
		!sameLockedOdds(in.LockedOdds, out.LockedOdds) {
		return reject(b.kind, "match.resolution.odds", "pair %d changed odds", i)
	}
	if out.RandomSeed == nil || *out.RandomSeed == "" {
		return reject(b.kind, "match.resolution.seed", "output %d has no random seed", i)
	}
	if out.TotalHomeBets < in.TotalHomeBets || out.TotalAwayBets < in.TotalAwayBets || out.TotalDrawBets < in.TotalDrawBets {
		return reject(b.kind, "match.resolution.volume", "pair %d volume decreased", i)
	}
	return nil
}
